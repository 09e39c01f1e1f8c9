package lifecycle

const (
	EnvNameNotifySocket string = "NOTIFY_SOCKET"
	ReloadFailedStatus  string = "Reload failed, previous configuration still active. Check daemon logs."
)
