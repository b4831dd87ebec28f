package review

// NoticeKind classifies a message for the reviewer.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeLoadFailed
	NoticeSaved
	NoticeSaveFailed
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeLoadFailed:
		return "load failed"
	case NoticeSaved:
		return "saved"
	case NoticeSaveFailed:
		return "save failed"
	}
	return "info"
}

// Notice is a user-facing message. Blocking notices must be acknowledged
// by the reviewer before they go away; the others are passive.
type Notice struct {
	Kind     NoticeKind
	EmailID  int64
	Message  string
	Err      error
	Blocking bool
}

// Notifier delivers notices to whatever surface the reviewer is using.
// Notify may be called from any goroutine and must not block for long.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})
