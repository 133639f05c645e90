package classify

// catalogEntry is one row of the frozen API recognition table.
// Hardware entries carry a non-empty TargetWord naming the stack-based
// primitive that replaces the call; scaffolding entries carry none.
type catalogEntry struct {
	Category   Category
	TargetWord string
}

// catalogue is the static ~100-entry recognition table. It never
// changes at runtime and is identical across processes.
var catalogue = map[string]catalogEntry{
	// Port I/O.
	"READ_PORT_UCHAR":          {PortIO, "C@-PORT"},
	"READ_PORT_USHORT":         {PortIO, "W@-PORT"},
	"READ_PORT_ULONG":          {PortIO, "@-PORT"},
	"WRITE_PORT_UCHAR":         {PortIO, "C!-PORT"},
	"WRITE_PORT_USHORT":        {PortIO, "W!-PORT"},
	"WRITE_PORT_ULONG":         {PortIO, "!-PORT"},
	"READ_PORT_BUFFER_UCHAR":   {PortIO, "C@-PORT-BUFFER"},
	"READ_PORT_BUFFER_USHORT":  {PortIO, "W@-PORT-BUFFER"},
	"READ_PORT_BUFFER_ULONG":   {PortIO, "@-PORT-BUFFER"},
	"WRITE_PORT_BUFFER_UCHAR":  {PortIO, "C!-PORT-BUFFER"},
	"WRITE_PORT_BUFFER_USHORT": {PortIO, "W!-PORT-BUFFER"},
	"WRITE_PORT_BUFFER_ULONG":  {PortIO, "!-PORT-BUFFER"},

	// Memory-mapped I/O.
	"READ_REGISTER_UCHAR":          {MMIO, "C@-MMIO"},
	"READ_REGISTER_USHORT":         {MMIO, "W@-MMIO"},
	"READ_REGISTER_ULONG":          {MMIO, "@-MMIO"},
	"WRITE_REGISTER_UCHAR":         {MMIO, "C!-MMIO"},
	"WRITE_REGISTER_USHORT":        {MMIO, "W!-MMIO"},
	"WRITE_REGISTER_ULONG":         {MMIO, "!-MMIO"},
	"READ_REGISTER_BUFFER_UCHAR":   {MMIO, "C@-MMIO-BUFFER"},
	"READ_REGISTER_BUFFER_USHORT":  {MMIO, "W@-MMIO-BUFFER"},
	"READ_REGISTER_BUFFER_ULONG":   {MMIO, "@-MMIO-BUFFER"},
	"WRITE_REGISTER_BUFFER_UCHAR":  {MMIO, "C!-MMIO-BUFFER"},
	"WRITE_REGISTER_BUFFER_USHORT": {MMIO, "W!-MMIO-BUFFER"},
	"WRITE_REGISTER_BUFFER_ULONG":  {MMIO, "!-MMIO-BUFFER"},
	"MmMapIoSpace":                 {MMIO, "MAP-MMIO"},
	"MmUnmapIoSpace":               {MMIO, "UNMAP-MMIO"},

	// DMA.
	"IoAllocateAdapterChannel":   {DMA, "DMA-ALLOCATE-CHANNEL"},
	"IoFreeAdapterChannel":       {DMA, "DMA-FREE-CHANNEL"},
	"IoMapTransfer":              {DMA, "DMA-MAP-TRANSFER"},
	"IoFlushAdapterBuffers":      {DMA, "DMA-FLUSH-BUFFERS"},
	"HalGetAdapter":              {DMA, "DMA-GET-ADAPTER"},
	"MmAllocateContiguousMemory": {DMA, "DMA-ALLOC-CONTIGUOUS"},
	"MmGetPhysicalAddress":       {DMA, "DMA-PHYS-ADDR"},

	// Interrupts.
	"IoConnectInterrupt":         {Interrupt, "IRQ-CONNECT"},
	"IoDisconnectInterrupt":      {Interrupt, "IRQ-DISCONNECT"},
	"KeSynchronizeExecution":     {Interrupt, "IRQ-SYNC-EXEC"},
	"KeAcquireInterruptSpinLock": {Interrupt, "IRQ-LOCK"},
	"KeReleaseInterruptSpinLock": {Interrupt, "IRQ-UNLOCK"},

	// Timing.
	"KeStallExecutionProcessor": {Timing, "US-DELAY"},
	"KeDelayExecutionThread":    {Timing, "MS-DELAY"},
	"KeQueryPerformanceCounter": {Timing, "PERF-COUNTER"},
	"KeQuerySystemTime":         {Timing, "SYSTEM-TIME"},

	// PCI configuration.
	"HalGetBusData":         {PCIConfig, "PCI-READ"},
	"HalSetBusData":         {PCIConfig, "PCI-WRITE"},
	"HalGetBusDataByOffset": {PCIConfig, "PCI-READ-OFFSET"},
	"HalSetBusDataByOffset": {PCIConfig, "PCI-WRITE-OFFSET"},
	"HalGetInterruptVector": {PCIConfig, "PCI-IRQ-VECTOR"},

	// IRP lifecycle (scaffolding).
	"IoCompleteRequest":             {IRP, ""},
	"IofCompleteRequest":            {IRP, ""},
	"IoCallDriver":                  {IRP, ""},
	"IofCallDriver":                 {IRP, ""},
	"IoCreateDevice":                {IRP, ""},
	"IoDeleteDevice":                {IRP, ""},
	"IoGetCurrentIrpStackLocation":  {IRP, ""},
	"IoSkipCurrentIrpStackLocation": {IRP, ""},
	"IoSetCompletionRoutine":        {IRP, ""},
	"IoMarkIrpPending":              {IRP, ""},
	"IoStartNextPacket":             {IRP, ""},
	"IoStartPacket":                 {IRP, ""},
	"IoBuildSynchronousFsdRequest":  {IRP, ""},
	"IoBuildDeviceIoControlRequest": {IRP, ""},
	"IoAllocateIrp":                 {IRP, ""},
	"IoFreeIrp":                     {IRP, ""},
	"IoInvalidateDeviceState":       {IRP, ""},

	// Plug and play (scaffolding).
	"IoRegisterDeviceInterface":      {PNP, ""},
	"IoSetDeviceInterfaceState":      {PNP, ""},
	"IoOpenDeviceRegistryKey":        {PNP, ""},
	"IoGetDeviceProperty":            {PNP, ""},
	"IoAttachDeviceToDeviceStack":    {PNP, ""},
	"IoDetachDevice":                 {PNP, ""},
	"IoRegisterPlugPlayNotification": {PNP, ""},

	// Power (scaffolding).
	"PoSetPowerState":                {Power, ""},
	"PoCallDriver":                   {Power, ""},
	"PoStartNextPowerIrp":            {Power, ""},
	"PoRequestPowerIrp":              {Power, ""},
	"PoRegisterPowerSettingCallback": {Power, ""},

	// Memory manager (scaffolding).
	"ExAllocatePoolWithTag":     {MemoryManager, ""},
	"ExFreePoolWithTag":         {MemoryManager, ""},
	"ExAllocatePool":            {MemoryManager, ""},
	"ExFreePool":                {MemoryManager, ""},
	"MmAllocateNonCachedMemory": {MemoryManager, ""},
	"MmFreeNonCachedMemory":     {MemoryManager, ""},
	"MmProbeAndLockPages":       {MemoryManager, ""},
	"MmUnlockPages":             {MemoryManager, ""},

	// Synchronization (scaffolding).
	"KeAcquireSpinLock":             {Synchronization, ""},
	"KeReleaseSpinLock":             {Synchronization, ""},
	"KeInitializeSpinLock":          {Synchronization, ""},
	"KeAcquireSpinLockAtDpcLevel":   {Synchronization, ""},
	"KeReleaseSpinLockFromDpcLevel": {Synchronization, ""},
	"ExAcquireFastMutex":            {Synchronization, ""},
	"ExReleaseFastMutex":            {Synchronization, ""},
	"KeWaitForSingleObject":         {Synchronization, ""},
	"KeSetEvent":                    {Synchronization, ""},
	"KeClearEvent":                  {Synchronization, ""},
	"KeInitializeEvent":             {Synchronization, ""},
	"KeInitializeMutex":             {Synchronization, ""},
	"KeReleaseMutex":                {Synchronization, ""},

	// Registry (scaffolding).
	"RtlWriteRegistryValue":  {Registry, ""},
	"RtlQueryRegistryValues": {Registry, ""},
	"RtlDeleteRegistryValue": {Registry, ""},
	"RtlCheckRegistryKey":    {Registry, ""},
	"ZwOpenKey":              {Registry, ""},
	"ZwQueryValueKey":        {Registry, ""},
	"ZwSetValueKey":          {Registry, ""},
	"ZwClose":                {Registry, ""},

	// Strings (scaffolding).
	"RtlInitUnicodeString":           {String, ""},
	"RtlCopyUnicodeString":           {String, ""},
	"RtlAnsiStringToUnicodeString":   {String, ""},
	"RtlUnicodeStringToAnsiString":   {String, ""},
	"RtlCompareUnicodeString":        {String, ""},
	"RtlFreeUnicodeString":           {String, ""},
	"RtlAppendUnicodeStringToString": {String, ""},

	// WMI (scaffolding).
	"IoWMIRegistrationControl": {WMI, ""},
	"WmiQueryTraceInformation": {WMI, ""},
	"IoWMIWriteEvent":          {WMI, ""},
	"IoWMIOpenBlock":           {WMI, ""},
	"IoWMISuggestInstanceName": {WMI, ""},
}

// Lookup returns the catalogue entry for an import name and whether it
// was found.
func Lookup(name string) (Category, string, bool) {
	e, ok := catalogue[name]
	if !ok {
		return Unknown, "", false
	}
	return e.Category, e.TargetWord, true
}

// Names returns every catalogue key, used for near-miss suggestions on
// unrecognized imports.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	return names
}
