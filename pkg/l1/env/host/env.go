// Package host sets up connections from hosts to motor controllers.
package host

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/robotalks/bldc.go/pkg/l0/link"
	"github.com/robotalks/bldc.go/pkg/l0/serial"
	"github.com/robotalks/bldc.go/pkg/l1"
	"github.com/robotalks/bldc.go/pkg/l1/comm"
	"github.com/robotalks/bldc.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/bldc.go/pkg/l1/comm/websocket"
)

// Config provides common options to connect devices.
type Config struct {
	// Target is where the device is connected, e.g.
	// serial:/dev/ttyUSB0, tcp:host:7300, ws://host:8080/bldc,
	// or TYPE/ID of a device registered with the broker.
	Target        string
	SerialOptions serial.Options

	// RegistryURL specifies the broker devices register with.
	// e.g. mqtt://host:port/topic-prefix
	RegistryURL string
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/bldc/",
}

func init() {
	if val := os.Getenv("BLDC_TARGET"); val != "" {
		defaultConfig.Target = val
	}
	if val := os.Getenv("BLDC_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Target, "target", defaultConfig.Target, "Device to connect.")
	flag.IntVar(&defaultConfig.SerialOptions.BaudRate, "baud", defaultConfig.SerialOptions.BaudRate, "Serial baud rate.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Device registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using the registry.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// TargetKind classifies a target.
type TargetKind int

// Target kinds.
const (
	TargetInvalid TargetKind = iota
	TargetLink
	TargetWebSocket
	TargetRegistry
)

// ParseTarget classifies target and extracts the device ref of a
// registry target.
func ParseTarget(target string) (TargetKind, l1.DeviceRef) {
	switch {
	case target == "":
		return TargetInvalid, l1.DeviceRef{}
	case strings.HasPrefix(target, "ws://"), strings.HasPrefix(target, "wss://"):
		return TargetWebSocket, l1.DeviceRef{}
	case strings.HasPrefix(target, "/"):
		return TargetLink, l1.DeviceRef{}
	case strings.Contains(target, ":"):
		if _, err := link.ParseTarget(target); err == nil {
			return TargetLink, l1.DeviceRef{}
		}
		return TargetInvalid, l1.DeviceRef{}
	}
	if items := strings.Split(target, "/"); len(items) == 2 {
		ref := l1.DeviceRef{Type: items[0], ID: items[1]}
		if ref.IsValid() {
			return TargetRegistry, ref
		}
	}
	return TargetInvalid, l1.DeviceRef{}
}

// Connect connects to the target.
func (c *Config) Connect(ctx context.Context, target string) (l1.DeviceConn, error) {
	kind, ref := ParseTarget(target)
	switch kind {
	case TargetLink:
		conn, err := link.Open(target, c.SerialOptions)
		if err != nil {
			return nil, err
		}
		return comm.NewConn(conn), nil
	case TargetWebSocket:
		u, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		origin := "http://" + u.Host + "/"
		rw, err := websocket.Dial(target, origin)
		if err != nil {
			return nil, err
		}
		return comm.NewConn(rw), nil
	case TargetRegistry:
		connector, err := c.NewConnector()
		if err != nil {
			return nil, err
		}
		return connector.Connect(ctx, ref)
	}
	return nil, fmt.Errorf("invalid target %q", target)
}

// MustConnect connects to the configured target or fails.
func (c *Config) MustConnect() l1.DeviceConn {
	conn, err := c.Connect(context.TODO(), c.Target)
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
