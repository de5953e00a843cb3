package port

// Alerter raises transient, user-facing alerts. The sync engine maps
// notification priorities onto it: high priority reaches Urgent, medium
// reaches Notice, and failed user actions surface through Warn.
type Alerter interface {
	Urgent(title, message string)
	Notice(title, message string)
	Warn(title, message string)
}

// NopAlerter discards every alert.
type NopAlerter struct{}

func (NopAlerter) Urgent(string, string) {}
func (NopAlerter) Notice(string, string) {}
func (NopAlerter) Warn(string, string)   {}
