package domain

// EventType identifies a domain event that can be delivered to receivers.
// The enumeration is closed: extend by adding constants, never by renaming.
type EventType string

const (
	EventCheckinCompleted  EventType = "client.checkin.completed"
	EventGoalAchieved      EventType = "client.goal.achieved"
	EventSessionCompleted  EventType = "coaching.session.completed"
	EventProgramPurchased  EventType = "program.purchased"
	EventSquadMemberJoined EventType = "squad.member.joined"
	EventPaymentReceived   EventType = "payment.received"
)

// EventTypes lists every known event type.
func EventTypes() []EventType {
	return []EventType{
		EventCheckinCompleted,
		EventGoalAchieved,
		EventSessionCompleted,
		EventProgramPurchased,
		EventSquadMemberJoined,
		EventPaymentReceived,
	}
}

// Valid reports whether e is part of the closed enumeration.
func (e EventType) Valid() bool {
	switch e {
	case EventCheckinCompleted, EventGoalAchieved, EventSessionCompleted,
		EventProgramPurchased, EventSquadMemberJoined, EventPaymentReceived:
		return true
	}
	return false
}
