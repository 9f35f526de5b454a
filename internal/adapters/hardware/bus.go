package hardware

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/serfreeman1337/go-ch347"
	"github.com/sstallion/go-hid"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

// Address is the fixed I2C address of the APDS-9960
const Address = 0x39

// Bus is an I2C bus the driver can own and release
type Bus interface {
	drivers.I2C
	io.Closer
}

// OpenPeriphBus opens a host I2C bus through periph.io.
// An empty name picks the first bus available, e.g. /dev/i2c-1 on a Raspberry Pi.
func OpenPeriphBus(name string) (Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", name, err)
	}
	return bus, nil
}

// CH347 USB bridge, ID 1a86:55dc QinHeng Electronics
const (
	ch347VendorID  = 0x1a86
	ch347ProductID = 0x55dc
	ch347Product   = "HID To UART+SPI+I2C"

	// InterfaceNbr 0 is UART, 1 is SPI+I2C+GPIO
	ch347I2CInterface = 1
)

// ch347Bus drives the sensor through a CH347 USB to I2C bridge
type ch347Bus struct {
	io  *ch347.IO
	dev *hid.Device
}

// OpenCH347Bus locates a CH347 bridge and configures its I2C master.
// hidraw access must be granted to the user running the service.
func OpenCH347Bus() (Bus, error) {
	path := ch347Path(ch347I2CInterface)
	if path == "" {
		return nil, fmt.Errorf("ch347 not found")
	}

	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	c := &ch347.IO{Dev: &hidWithTimeout{dev}}
	if err := c.SetI2C(ch347.I2CMode3); err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to configure ch347 I2C: %w", err)
	}

	return &ch347Bus{io: c, dev: dev}, nil
}

// Tx only talks to the APDS-9960; other addresses are rejected
func (b *ch347Bus) Tx(addr uint16, w, r []byte) error {
	if addr != Address {
		return fmt.Errorf("ch347: unexpected I2C address %#x", addr)
	}
	return b.io.I2C(Address, w, r)
}

func (b *ch347Bus) Close() error {
	return b.dev.Close()
}

func ch347Path(iface int) string {
	var path string
	hid.Enumerate(ch347VendorID, ch347ProductID, func(info *hid.DeviceInfo) error {
		if path == "" && info.ProductStr == ch347Product && info.InterfaceNbr == iface {
			path = info.Path
		}
		return nil
	})
	return path
}

// hidWithTimeout reads with a timeout and retries on "Interrupted system call"
type hidWithTimeout struct {
	*hid.Device
}

func (d *hidWithTimeout) Read(p []byte) (n int, err error) {
	for {
		n, err = d.Device.ReadWithTimeout(p, 1*time.Second)
		if err == nil || err.Error() != "Interrupted system call" {
			return
		}
	}
}

// errBus remembers the first failed transaction so the fire-and-forget
// calls of the tinygo driver can still surface I/O errors
type errBus struct {
	mu  sync.Mutex
	bus drivers.I2C
	err error
}

func (b *errBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil {
		b.mu.Lock()
		if b.err == nil {
			b.err = err
		}
		b.mu.Unlock()
	}
	return err
}

// take returns and clears the remembered error
func (b *errBus) take() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.err
	b.err = nil
	return err
}
