package events

// Subscription is isomorphic to Kind plus one synthetic value, All, that
// matches every event regardless of its Kind.
type Subscription string

const (
	All                       Subscription = "all"
	SubStateChanged           Subscription = Subscription(KindStateChanged)
	SubSongChanged            Subscription = Subscription(KindSongChanged)
	SubLoopModeChanged        Subscription = Subscription(KindLoopModeChanged)
	SubRandomChanged          Subscription = Subscription(KindRandomChanged)
	SubCapabilitiesChanged    Subscription = Subscription(KindCapabilitiesChanged)
	SubPositionChanged        Subscription = Subscription(KindPositionChanged)
	SubDatabaseUpdating       Subscription = Subscription(KindDatabaseUpdating)
	SubQueueChanged           Subscription = Subscription(KindQueueChanged)
	SubSongInformationUpdate  Subscription = Subscription(KindSongInformationUpdate)
	SubActivePlayerChanged    Subscription = Subscription(KindActivePlayerChanged)
	SubVolumeChanged          Subscription = Subscription(KindVolumeChanged)
)

// Of derives the Subscription value matching an event's own Kind (never
// All — All is a subscriber-side wildcard, not a property an event has).
func Of(e PlayerEvent) Subscription {
	return Subscription(e.Kind)
}

// matches reports whether a subscriber's interest set is satisfied by kind.
func matches(interests map[Subscription]struct{}, kind Subscription) bool {
	if _, ok := interests[All]; ok {
		return true
	}
	_, ok := interests[kind]
	return ok
}
