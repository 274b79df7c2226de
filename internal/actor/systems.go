package actor

// SoundHandle is a live playback started by an AudioSystem.
type SoundHandle interface {
	Playing() bool
	Stop()
}

// AudioSystem plays cues and owns the master mix.
type AudioSystem interface {
	Play(owner Actor, cue string, volume, pitch, offset float64) SoundHandle
	Master() (volume, pitch float64)
	SetMaster(volume, pitch float64)
}

// World exposes global simulation state.
type World interface {
	TimeDilation() float64
	SetTimeDilation(float64)
}

// NotificationKind tells event notifications from the terminal one.
type NotificationKind int

const (
	EventFired NotificationKind = iota
	SequenceFinished
)

func (k NotificationKind) String() string {
	if k == SequenceFinished {
		return "finished"
	}
	return "event"
}

// Notification is emitted for fired event keys and when playback runs off the end.
type Notification struct {
	Kind     NotificationKind
	Session  string
	Sequence string
	Group    string
	Name     string
	Time     float64
}

// Notifier receives notifications. It may call back into the player.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
