package max30101

// Register addresses
const (
	IntStat1     = 0x00
	IntStat2     = 0x01
	IntEna1      = 0x02
	IntEna2      = 0x03
	FIFOWrPtr    = 0x04
	OvfCount     = 0x05
	FIFORdPtr    = 0x06
	FIFOData     = 0x07
	FIFOCfg      = 0x08
	ModeCfg      = 0x09
	ParticleCfg  = 0x0A
	Led1PA       = 0x0C
	Led2PA       = 0x0D
	Led3PA       = 0x0E
	LedProxPA    = 0x10
	MultiLedS2S1 = 0x11
	MultiLedS4S3 = 0x12
	TempInt      = 0x1F
	TempFrac     = 0x20
	TempCfg      = 0x21
	ProxThresh   = 0x30
	RegRevID     = 0xFE
	RegPartID    = 0xFF
)

// Interrupt flags
const (
	// Status 1
	AlmostFull            byte = (1 << 7)
	NewFIFOData           byte = (1 << 6)
	AmbientLightCancelOvf byte = (1 << 5)
	Proximity             byte = (1 << 4)
	PowerReady            byte = (1 << 0)

	// Status 2
	DieTempReady byte = (1 << 1)
)

// Device constants
const (
	Addr   = 0x57
	PartID = 0x15
)

// Mode configuration
const (
	ModeRedOnly  byte = 0b010
	ModeRedIR    byte = 0b011
	ModeMultiLed byte = 0b111
	modeMask     byte = 0b1111_1000

	shutdownMask byte = 0b0111_1111
	shutdownBit  byte = 0b1000_0000

	resetMask byte = 0b1011_1111
	resetBit  byte = 0b0100_0000
)

// FIFO configuration: sample averaging per FIFO entry
const (
	SampleAvg1  byte = 0x00
	SampleAvg2  byte = 0x20
	SampleAvg4  byte = 0x40
	SampleAvg8  byte = 0x60
	SampleAvg16 byte = 0x80
	SampleAvg32 byte = 0xA0

	sampleAvgMask byte = 0b0001_1111
	rolloverMask  byte = 0b1110_1111
	rolloverEna   byte = 0b0001_0000
	fifoFullMask  byte = 0b1111_0000
)

// Particle-sensing configuration: ADC full-scale range
const (
	ADCRange2048  byte = 0x00
	ADCRange4096  byte = 0x20
	ADCRange8192  byte = 0x40
	ADCRange16384 byte = 0x60

	adcRangeMask byte = 0b1001_1111
)

// Particle-sensing configuration: sample rate control
const (
	SampleRate50 = (iota << 2)
	SampleRate100
	SampleRate200
	SampleRate400
	SampleRate800
	SampleRate1000
	SampleRate1600
	SampleRate3200

	srMask byte = 0b1110_0011
)

// Particle-sensing configuration: LED pulse width control
const (
	PW69 = iota // 15-bit resolution
	PW118
	PW215
	PW411 // 18-bit resolution

	pwMask byte = 0b1111_1100
)

// Multi-LED slot assignments (4 multiplexed slots, 2 per register)
const (
	SlotNone       byte = 0x00
	SlotRedLED     byte = 0x01
	SlotIRLED      byte = 0x02
	SlotGreenLED   byte = 0x03
	SlotRedPilot   byte = 0x05
	SlotIRPilot    byte = 0x06
	SlotGreenPilot byte = 0x07

	slotLowMask  byte = 0b1111_1000
	slotHighMask byte = 0b1000_1111
)

// Temperature one-shot trigger
const tempEna byte = 0b0000_0001
