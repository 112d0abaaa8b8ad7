package conf

// PWMMode selects the switching scheme of the bridge.
type PWMMode uint8

// PWM modes.
const (
	PWMModeNonsynchronousHISW PWMMode = iota
	PWMModeSynchronous
	PWMModeBipolar
)

// CommMode selects how commutation timing is derived in sensorless mode.
type CommMode uint8

// Commutation modes.
const (
	CommModeIntegrate CommMode = iota
	CommModeDelay
)

// AppType selects the input application.
type AppType uint8

// Applications.
const (
	AppNone AppType = iota
	AppPPM
	AppUARTComm
	AppPPMUARTComm
	AppNunchuk
	AppCustom
)

// PPMCtrlType selects what a servo pulse input controls.
type PPMCtrlType uint8

// PPM control types.
const (
	PPMCtrlNone PPMCtrlType = iota
	PPMCtrlCurrent
	PPMCtrlCurrentNoRev
	PPMCtrlCurrentNoRevBrake
	PPMCtrlDuty
	PPMCtrlDutyNoRev
	PPMCtrlPID
	PPMCtrlPIDNoRev
)

// ChukCtrlType selects what a nunchuk input controls.
type ChukCtrlType uint8

// Nunchuk control types.
const (
	ChukCtrlNone ChukCtrlType = iota
	ChukCtrlCurrent
	ChukCtrlCurrentNoRev
)

// MotorConfig is the motor drive configuration.
type MotorConfig struct {
	PWMMode  PWMMode
	CommMode CommMode

	// Limits
	LCurrentMax      float64
	LCurrentMin      float64
	LInCurrentMax    float64
	LInCurrentMin    float64
	LAbsCurrentMax   float64
	LMinERPM         float64
	LMaxERPM         float64
	LMaxERPMFbrake   float64
	LMaxERPMFbrakeCC float64
	LMinVin          float64
	LMaxVin          float64
	LSlowAbsCurrent  bool
	LRPMLimNegTorque bool
	LTempFETStart    float64
	LTempFETEnd      float64
	LTempMotorStart  float64
	LTempMotorEnd    float64

	// Overridden limits, always derived from the limits above.
	LoCurrentMax   float64
	LoCurrentMin   float64
	LoInCurrentMax float64
	LoInCurrentMin float64

	// Sensorless
	SlIsSensorless                 bool
	SlMinERPM                      float64
	SlMinERPMCycleIntLimit         float64
	SlMaxFullbreakCurrentDirChange float64
	SlCycleIntLimit                float64
	SlPhaseAdvanceAtBR             float64
	SlCycleIntRPMBR                float64
	SlBEMFCouplingK                float64

	// Hall sensors
	HallDir    uint8
	HallFwdAdd uint8
	HallRevAdd uint8

	// Speed PID
	SPIDKp     float64
	SPIDKi     float64
	SPIDKd     float64
	SPIDMinRPM float64

	// Current controller
	CCStartupBoostDuty float64
	CCMinCurrent       float64
	CCGain             float64

	MFaultStopTimeMs int32
}

// DeriveLimits copies the configured limits into the overridden limits.
func (c *MotorConfig) DeriveLimits() {
	c.LoCurrentMax = c.LCurrentMax
	c.LoCurrentMin = c.LCurrentMin
	c.LoInCurrentMax = c.LInCurrentMax
	c.LoInCurrentMin = c.LInCurrentMin
}

// PPMConfig configures the servo pulse input.
type PPMConfig struct {
	CtrlType    PPMCtrlType
	PIDMaxERPM  float64
	Hyst        float64
	PulseStart  float64
	PulseWidth  float64
	RPMLimStart float64
	RPMLimEnd   float64
	MultiESC    bool
	TC          bool
	TCMaxDiff   float64
}

// ChukConfig configures the nunchuk input.
type ChukConfig struct {
	CtrlType    ChukCtrlType
	Hyst        float64
	RPMLimStart float64
	RPMLimEnd   float64
	RampTimePos float64
	RampTimeNeg float64
	MultiESC    bool
	TC          bool
	TCMaxDiff   float64
}

// AppConfig is the application configuration.
type AppConfig struct {
	ControllerID        uint8
	TimeoutMsec         uint32
	TimeoutBrakeCurrent float64
	SendCANStatus       bool
	AppToUse            AppType
	PPM                 PPMConfig
	UARTBaudrate        uint32
	Chuk                ChukConfig
}
