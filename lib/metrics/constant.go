package metrics

const (
	Namespace         = "tcr"
	RegistrySubsystem = "registry"
	PollSubsystem     = "poll"
	APISubsystem      = "api"
)
