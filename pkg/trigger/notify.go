package trigger

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message surfaced to the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Opener opens a generated file, typically in a new browser tab.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

type nopOpener struct{}

func (nopOpener) Open(string) error { return nil }
