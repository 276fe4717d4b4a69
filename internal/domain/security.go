package domain

type ProtectionStatus struct {
	Enabled bool
	Detail  string
}

type SecurityStatus struct {
	Status              string
	APIKeyProtection    ProtectionStatus
	SkillScanning       ProtectionStatus
	ContainerProtection ProtectionStatus
}

func (s SecurityStatus) AllEnabled() bool {
	return s.APIKeyProtection.Enabled && s.SkillScanning.Enabled && s.ContainerProtection.Enabled
}
