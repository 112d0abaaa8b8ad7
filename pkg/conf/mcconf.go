package conf

import "github.com/robotalks/bldc.go/pkg/codec"

// Scales of the motor configuration fields on the wire.
const (
	ScaleMilli = 1000
	ScaleMicro = 1e6
)

// MotorConfigTable lists the motor configuration fields in wire order.
// Fields marked persist-only are stored but never transmitted.
var MotorConfigTable = codec.Table[MotorConfig]{
	codec.Enum("pwm_mode", PWMModeSynchronous, func(c *MotorConfig) *PWMMode { return &c.PWMMode }),
	codec.Enum("comm_mode", CommModeIntegrate, func(c *MotorConfig) *CommMode { return &c.CommMode }),
	codec.Float("l_current_max", ScaleMilli, 60, func(c *MotorConfig) *float64 { return &c.LCurrentMax }),
	codec.Float("l_current_min", ScaleMilli, -60, func(c *MotorConfig) *float64 { return &c.LCurrentMin }),
	codec.Float("l_in_current_max", ScaleMilli, 60, func(c *MotorConfig) *float64 { return &c.LInCurrentMax }),
	codec.Float("l_in_current_min", ScaleMilli, -20, func(c *MotorConfig) *float64 { return &c.LInCurrentMin }),
	codec.Float("l_abs_current_max", ScaleMilli, 150, func(c *MotorConfig) *float64 { return &c.LAbsCurrentMax }),
	codec.Float("l_min_erpm", ScaleMilli, -100000, func(c *MotorConfig) *float64 { return &c.LMinERPM }),
	codec.Float("l_max_erpm", ScaleMilli, 100000, func(c *MotorConfig) *float64 { return &c.LMaxERPM }),
	codec.Float("l_max_erpm_fbrake", ScaleMilli, 300, func(c *MotorConfig) *float64 { return &c.LMaxERPMFbrake }),
	codec.Float("l_max_erpm_fbrake_cc", ScaleMilli, 1500, func(c *MotorConfig) *float64 { return &c.LMaxERPMFbrakeCC }).PersistOnly(),
	codec.Float("l_min_vin", ScaleMilli, 8, func(c *MotorConfig) *float64 { return &c.LMinVin }),
	codec.Float("l_max_vin", ScaleMilli, 50, func(c *MotorConfig) *float64 { return &c.LMaxVin }),
	codec.Bool("l_slow_abs_current", false, func(c *MotorConfig) *bool { return &c.LSlowAbsCurrent }),
	codec.Bool("l_rpm_lim_neg_torque", true, func(c *MotorConfig) *bool { return &c.LRPMLimNegTorque }),
	codec.Float("l_temp_fet_start", ScaleMilli, 80, func(c *MotorConfig) *float64 { return &c.LTempFETStart }),
	codec.Float("l_temp_fet_end", ScaleMilli, 100, func(c *MotorConfig) *float64 { return &c.LTempFETEnd }),
	codec.Float("l_temp_motor_start", ScaleMilli, 80, func(c *MotorConfig) *float64 { return &c.LTempMotorStart }),
	codec.Float("l_temp_motor_end", ScaleMilli, 100, func(c *MotorConfig) *float64 { return &c.LTempMotorEnd }),
	codec.Bool("sl_is_sensorless", true, func(c *MotorConfig) *bool { return &c.SlIsSensorless }),
	codec.Float("sl_min_erpm", ScaleMilli, 250, func(c *MotorConfig) *float64 { return &c.SlMinERPM }),
	codec.Float("sl_max_fullbreak_current_dir_change", ScaleMilli, 10, func(c *MotorConfig) *float64 { return &c.SlMaxFullbreakCurrentDirChange }).PersistOnly(),
	codec.Float("sl_min_erpm_cycle_int_limit", ScaleMilli, 1100, func(c *MotorConfig) *float64 { return &c.SlMinERPMCycleIntLimit }),
	codec.Float("sl_cycle_int_limit", ScaleMilli, 62, func(c *MotorConfig) *float64 { return &c.SlCycleIntLimit }),
	codec.Float("sl_phase_advance_at_br", ScaleMilli, 0.8, func(c *MotorConfig) *float64 { return &c.SlPhaseAdvanceAtBR }),
	codec.Float("sl_cycle_int_rpm_br", ScaleMilli, 80000, func(c *MotorConfig) *float64 { return &c.SlCycleIntRPMBR }),
	codec.Float("sl_bemf_coupling_k", ScaleMilli, 600, func(c *MotorConfig) *float64 { return &c.SlBEMFCouplingK }),
	codec.Enum("hall_dir", uint8(0), func(c *MotorConfig) *uint8 { return &c.HallDir }),
	codec.Enum("hall_fwd_add", uint8(0), func(c *MotorConfig) *uint8 { return &c.HallFwdAdd }),
	codec.Enum("hall_rev_add", uint8(0), func(c *MotorConfig) *uint8 { return &c.HallRevAdd }),
	codec.Float("s_pid_kp", ScaleMicro, 0.0001, func(c *MotorConfig) *float64 { return &c.SPIDKp }),
	codec.Float("s_pid_ki", ScaleMicro, 0.002, func(c *MotorConfig) *float64 { return &c.SPIDKi }),
	codec.Float("s_pid_kd", ScaleMicro, 0, func(c *MotorConfig) *float64 { return &c.SPIDKd }),
	codec.Float("s_pid_min_rpm", ScaleMilli, 900, func(c *MotorConfig) *float64 { return &c.SPIDMinRPM }),
	codec.Float("cc_startup_boost_duty", ScaleMicro, 0.01, func(c *MotorConfig) *float64 { return &c.CCStartupBoostDuty }),
	codec.Float("cc_min_current", ScaleMilli, 1.0, func(c *MotorConfig) *float64 { return &c.CCMinCurrent }),
	codec.Float("cc_gain", ScaleMicro, 0.0046, func(c *MotorConfig) *float64 { return &c.CCGain }),
	codec.Int32("m_fault_stop_time_ms", 3000, func(c *MotorConfig) *int32 { return &c.MFaultStopTimeMs }),
}

// DefaultMotorConfig returns the compiled-in motor configuration.
func DefaultMotorConfig() MotorConfig {
	c := MotorConfigTable.Defaults()
	c.DeriveLimits()
	return c
}

// EncodeMotorConfig appends the wire form of c.
func EncodeMotorConfig(w *codec.Writer, c *MotorConfig) {
	MotorConfigTable.EncodeWire(w, c)
}

// DecodeMotorConfig updates c from its wire form. On error c is partially
// updated and must be discarded.
func DecodeMotorConfig(r *codec.Reader, c *MotorConfig) error {
	if err := MotorConfigTable.DecodeWire(r, c); err != nil {
		return err
	}
	c.DeriveLimits()
	return nil
}
