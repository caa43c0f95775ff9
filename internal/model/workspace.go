package model

// Workspace type constants. Anything else falls back to startup defaults.
const (
	WorkspaceStartup    = "STARTUP"
	WorkspaceSME        = "SME"
	WorkspaceEnterprise = "ENTERPRISE"
	WorkspaceSACCO      = "SACCO"
)
