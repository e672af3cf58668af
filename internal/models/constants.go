package models

// CategoryInternalTransfer is the reserved category written on both legs of a
// neutralized transfer pair.
const CategoryInternalTransfer = "transferencia_interna"

// Date layouts
const (
	DateLayoutISO = "2006-01-02"
)

// IDLength is the length of the hex-encoded SHA-256 identity digest.
const IDLength = 64

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
