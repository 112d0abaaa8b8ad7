package conf

import "github.com/robotalks/bldc.go/pkg/codec"

// AppConfigTable lists the application configuration fields in wire order.
var AppConfigTable = codec.Table[AppConfig]{
	codec.Enum("controller_id", uint8(0), func(c *AppConfig) *uint8 { return &c.ControllerID }).PersistOnly(),
	codec.Uint32("timeout_msec", 1000, func(c *AppConfig) *uint32 { return &c.TimeoutMsec }),
	codec.Float("timeout_brake_current", ScaleMilli, 0, func(c *AppConfig) *float64 { return &c.TimeoutBrakeCurrent }),
	codec.Bool("send_can_status", true, func(c *AppConfig) *bool { return &c.SendCANStatus }).PersistOnly(),
	codec.Enum("app_to_use", AppNone, func(c *AppConfig) *AppType { return &c.AppToUse }),

	codec.Enum("app_ppm_ctrl_type", PPMCtrlCurrent, func(c *AppConfig) *PPMCtrlType { return &c.PPM.CtrlType }),
	codec.Float("app_ppm_pid_max_erpm", ScaleMilli, 15000, func(c *AppConfig) *float64 { return &c.PPM.PIDMaxERPM }),
	codec.Float("app_ppm_hyst", ScaleMilli, 0.15, func(c *AppConfig) *float64 { return &c.PPM.Hyst }),
	codec.Float("app_ppm_pulse_start", ScaleMilli, 1.0, func(c *AppConfig) *float64 { return &c.PPM.PulseStart }),
	codec.Float("app_ppm_pulse_width", ScaleMilli, 1.0, func(c *AppConfig) *float64 { return &c.PPM.PulseWidth }),
	codec.Float("app_ppm_rpm_lim_start", ScaleMilli, 150000, func(c *AppConfig) *float64 { return &c.PPM.RPMLimStart }),
	codec.Float("app_ppm_rpm_lim_end", ScaleMilli, 200000, func(c *AppConfig) *float64 { return &c.PPM.RPMLimEnd }),
	codec.Bool("app_ppm_multi_esc", true, func(c *AppConfig) *bool { return &c.PPM.MultiESC }).PersistOnly(),
	codec.Bool("app_ppm_tc", false, func(c *AppConfig) *bool { return &c.PPM.TC }).PersistOnly(),
	codec.Float("app_ppm_tc_max_diff", ScaleMilli, 3000, func(c *AppConfig) *float64 { return &c.PPM.TCMaxDiff }).PersistOnly(),

	codec.Uint32("app_uart_baudrate", 115200, func(c *AppConfig) *uint32 { return &c.UARTBaudrate }),

	codec.Enum("app_chuk_ctrl_type", ChukCtrlCurrent, func(c *AppConfig) *ChukCtrlType { return &c.Chuk.CtrlType }),
	codec.Float("app_chuk_hyst", ScaleMilli, 0.15, func(c *AppConfig) *float64 { return &c.Chuk.Hyst }),
	codec.Float("app_chuk_rpm_lim_start", ScaleMilli, 150000, func(c *AppConfig) *float64 { return &c.Chuk.RPMLimStart }),
	codec.Float("app_chuk_rpm_lim_end", ScaleMilli, 250000, func(c *AppConfig) *float64 { return &c.Chuk.RPMLimEnd }),
	codec.Float("app_chuk_ramp_time_pos", ScaleMilli, 0.5, func(c *AppConfig) *float64 { return &c.Chuk.RampTimePos }).PersistOnly(),
	codec.Float("app_chuk_ramp_time_neg", ScaleMilli, 0.25, func(c *AppConfig) *float64 { return &c.Chuk.RampTimeNeg }).PersistOnly(),
	codec.Bool("app_chuk_multi_esc", true, func(c *AppConfig) *bool { return &c.Chuk.MultiESC }).PersistOnly(),
	codec.Bool("app_chuk_tc", false, func(c *AppConfig) *bool { return &c.Chuk.TC }).PersistOnly(),
	codec.Float("app_chuk_tc_max_diff", ScaleMilli, 3000, func(c *AppConfig) *float64 { return &c.Chuk.TCMaxDiff }).PersistOnly(),
}

// DefaultAppConfig returns the compiled-in application configuration.
func DefaultAppConfig() AppConfig {
	return AppConfigTable.Defaults()
}

// EncodeAppConfig appends the wire form of c.
func EncodeAppConfig(w *codec.Writer, c *AppConfig) {
	AppConfigTable.EncodeWire(w, c)
}

// DecodeAppConfig updates c from its wire form.
func DecodeAppConfig(r *codec.Reader, c *AppConfig) error {
	return AppConfigTable.DecodeWire(r, c)
}
