package printer

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Printer delivers a rendered ESC/POS byte stream to the journal printer a
// closing slip is printed on.
type Printer interface {
	Print(data []byte) error
	Close() error
	// IsConnected reports whether the device is currently reachable.
	IsConnected() bool
}

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
	probeTimeout = 2 * time.Second
)

// usbPrinter writes to a character device such as /dev/usb/lp0. The device is
// opened per job so an unplugged printer only fails the jobs that hit it.
type usbPrinter struct {
	devicePath string
}

// NewUSBPrinter returns a printer backed by a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{devicePath: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	device, err := os.OpenFile(p.devicePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.devicePath, err)
	}
	defer device.Close()

	if _, err := device.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.devicePath, err)
	}
	return nil
}

func (p *usbPrinter) Close() error { return nil }

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.devicePath)
	return err == nil
}

// networkPrinter dials a raw-socket printer, conventionally on port 9100.
// Each job gets its own connection.
type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter returns a printer reached over TCP. The address must
// include the port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{address: address, timeout: dialTimeout}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error { return nil }

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// nullPrinter swallows every job. Used where no hardware is attached, so
// print deliveries succeed instead of dead-lettering.
type nullPrinter struct{}

// NewNullPrinter returns a no-op printer.
func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print([]byte) error { return nil }
func (p *nullPrinter) Close() error       { return nil }
func (p *nullPrinter) IsConnected() bool  { return false }

// NewPrinterFromConfig builds the printer named by configuration: "usb" with
// a device path, "network" with a TCP address, or "none" (also the empty
// default) for the no-op printer. address carries the device path or the
// TCP endpoint depending on the type.
func NewPrinterFromConfig(printerType, address string) (Printer, error) {
	switch printerType {
	case "usb":
		if address == "" {
			return nil, fmt.Errorf("printer: usb type needs a device path")
		}
		return NewUSBPrinter(address), nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: network type needs an address")
		}
		return NewNetworkPrinter(address), nil
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown type %q (usb, network or none)", printerType)
	}
}
