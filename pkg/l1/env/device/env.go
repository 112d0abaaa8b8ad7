// Package device sets up the environment of the motor controller daemon.
package device

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/eeprom"
	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l0/link"
	"github.com/robotalks/bldc.go/pkg/l0/serial"
	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/comm"
	"github.com/robotalks/bldc.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bldc.go/pkg/l1/comm/websocket"
	"github.com/robotalks/bldc.go/pkg/l1/env"
)

// DeviceType is the type registered with brokers.
const DeviceType = "bldc"

// Config provides options to setup the device env.
type Config struct {
	Info l1.DeviceInfo

	// Serial is the serial port for the L0 link.
	Serial        string
	SerialOptions serial.Options
	// Listen is the TCP address accepting L0 links.
	Listen string
	// WebSocket is the address serving websocket connections.
	WebSocket string
	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// EEPROM is the SQLite database path of persistent slots. Slots are
	// kept in memory if empty.
	EEPROM string
}

var defaultConfig = Config{
	Info: l1.DeviceInfo{
		Ref:  l1.DeviceRef{Type: DeviceType},
		Meta: l1.DeviceMeta{Description: "simulated BLDC controller", Firmware: "2.18"},
	},
	Listen: ":7300",
}

func init() {
	if val := os.Getenv("BLDC_SERIAL"); val != "" {
		defaultConfig.Serial = val
	}
	if val := os.Getenv("BLDC_BAUD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.SerialOptions.BaudRate = n
		}
	}
	if val, ok := os.LookupEnv("BLDC_LISTEN"); ok {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("BLDC_WS"); val != "" {
		defaultConfig.WebSocket = val
	}
	if val := os.Getenv("BLDC_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BLDC_EEPROM"); val != "" {
		defaultConfig.EEPROM = val
	}
	if val := os.Getenv("BLDC_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID, machine ID if empty")
	flag.StringVar(&defaultConfig.Serial, "serial", defaultConfig.Serial, "Serial port of L0 link")
	flag.IntVar(&defaultConfig.SerialOptions.BaudRate, "baud", defaultConfig.SerialOptions.BaudRate, "Serial baud rate")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "TCP address accepting L0 links")
	flag.StringVar(&defaultConfig.WebSocket, "ws", defaultConfig.WebSocket, "Websocket listening address")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.EEPROM, "eeprom", defaultConfig.EEPROM, "SQLite file of persistent slots")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the runtime env of the device.
type Env struct {
	Config     *Config
	Storage    eeprom.Storage
	Transports []fx.LoopAdder

	closers []io.Closer
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = env.MachineID()
	}
	e := &Env{Config: c}
	if err := e.openStorage(); err != nil {
		return nil, err
	}
	if err := e.openTransports(); err != nil {
		e.Close()
		return nil, err
	}
	if len(e.Transports) == 0 {
		e.Close()
		return nil, fmt.Errorf("at least one transport is required")
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

func (e *Env) openStorage() error {
	if e.Config.EEPROM == "" {
		e.Storage = eeprom.NewMemory()
		return nil
	}
	db, err := eeprom.OpenSQLite(e.Config.EEPROM)
	if err != nil {
		return fmt.Errorf("open eeprom %s: %w", e.Config.EEPROM, err)
	}
	e.Storage = db
	e.closers = append(e.closers, db)
	return nil
}

func (e *Env) openTransports() error {
	c := e.Config
	if c.Serial != "" {
		conn, err := link.Open(c.Serial, c.SerialOptions)
		if err != nil {
			return fmt.Errorf("open serial link: %w", err)
		}
		glog.Infof("serial link on %s", c.Serial)
		e.Transports = append(e.Transports, comm.NewDevicePipe(conn))
	}
	if c.Listen != "" {
		acceptor, err := comm.ListenLink(c.Listen)
		if err != nil {
			return fmt.Errorf("listen %s: %w", c.Listen, err)
		}
		glog.Infof("accept links on %s", acceptor.Addr())
		e.Transports = append(e.Transports, comm.NewServer("tcp", acceptor))
	}
	if c.WebSocket != "" {
		ln, err := websocket.Listen(c.WebSocket, websocket.DefaultPath)
		if err != nil {
			return fmt.Errorf("listen websocket %s: %w", c.WebSocket, err)
		}
		glog.Infof("accept websocket on %s%s", ln.Addr(), websocket.DefaultPath)
		e.Transports = append(e.Transports, comm.NewServer("websocket", ln))
	}
	if c.MQTTBrokerURL != "" {
		dev, err := mqtt.NewDevice(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return fmt.Errorf("create MQTT device: %w", err)
		}
		glog.Infof("register %s with %s", c.Info.Ref.Name(), c.MQTTBrokerURL)
		e.Transports = append(e.Transports, dev)
	}
	return nil
}

// AddToLoop adds transports to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Transports...)
}

// Close releases the storage.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for _, closer := range e.closers {
		errs.Add(closer.Close())
	}
	return errs.Aggregate()
}
