package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinterFromConfig(t *testing.T) {
	usb, err := NewPrinterFromConfig("usb", "/dev/usb/lp0")
	require.NoError(t, err)
	assert.Equal(t, "/dev/usb/lp0", usb.(*usbPrinter).devicePath)

	network, err := NewPrinterFromConfig("network", "192.168.1.100:9100")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.100:9100", network.(*networkPrinter).address)

	for _, printerType := range []string{"none", ""} {
		p, err := NewPrinterFromConfig(printerType, "")
		require.NoError(t, err)
		assert.IsType(t, &nullPrinter{}, p)
	}
}

func TestNewPrinterFromConfigRejectsMissingAddress(t *testing.T) {
	_, err := NewPrinterFromConfig("usb", "")
	assert.ErrorContains(t, err, "device path")

	_, err = NewPrinterFromConfig("network", "")
	assert.ErrorContains(t, err, "address")

	_, err = NewPrinterFromConfig("serial", "/dev/ttyS0")
	assert.ErrorContains(t, err, "unknown type")
}
