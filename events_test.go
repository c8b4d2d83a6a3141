package xpbd

import (
	"testing"

	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count(eventType EventType) int {
	n := 0
	for _, e := range ec.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

func subscribeAll(events *Events, ec *eventCapture) {
	events.Subscribe(COLLISION_ENTER, ec.capture)
	events.Subscribe(COLLISION_STAY, ec.capture)
	events.Subscribe(COLLISION_EXIT, ec.capture)
}

func floorContact(body *actor.RigidBody) constraint.Contact {
	return constraint.NewContact(actor.Attached(body), actor.FixedToWorld, body.Pose.Position, actor.Up, 0.1)
}

// =============================================================================
// Event lifecycle Tests
// =============================================================================

func TestEvents_EnterStayExit(t *testing.T) {
	events := NewEvents()
	ec := &eventCapture{}
	subscribeAll(&events, ec)
	body := createSphere(mgl64.Vec3{}, 1)

	// Tick 1: first contact
	events.recordContacts([]constraint.Contact{floorContact(body)})
	events.flush()
	if ec.count(COLLISION_ENTER) != 1 || len(ec.events) != 1 {
		t.Fatalf("tick 1: got %v, want a single enter", ec.events)
	}
	enter := ec.events[0].(CollisionEnterEvent)
	if enter.BodyA != body || enter.BodyB != nil {
		t.Errorf("enter = %+v, want the body against the floor", enter)
	}

	// Tick 2: contact recorded in several substeps
	ec.reset()
	events.recordContacts([]constraint.Contact{floorContact(body)})
	events.recordContacts([]constraint.Contact{floorContact(body), floorContact(body)})
	events.flush()
	if ec.count(COLLISION_STAY) != 1 || len(ec.events) != 1 {
		t.Fatalf("tick 2: got %v, want a single stay", ec.events)
	}

	// Tick 3: no contact
	ec.reset()
	events.flush()
	if ec.count(COLLISION_EXIT) != 1 || len(ec.events) != 1 {
		t.Fatalf("tick 3: got %v, want a single exit", ec.events)
	}

	// Tick 4: nothing left
	ec.reset()
	events.flush()
	if len(ec.events) != 0 {
		t.Errorf("tick 4: got %v, want no event", ec.events)
	}
}

func TestEvents_FirstSeenOrder(t *testing.T) {
	events := NewEvents()
	ec := &eventCapture{}
	subscribeAll(&events, ec)
	a := createSphere(mgl64.Vec3{}, 1)
	b := createSphere(mgl64.Vec3{}, 1)
	c := createSphere(mgl64.Vec3{}, 1)

	for range 5 {
		ec.reset()
		events.recordContacts([]constraint.Contact{
			constraint.NewContact(actor.Attached(b), actor.Attached(c), mgl64.Vec3{}, actor.Up, 0.1),
			floorContact(a),
			constraint.NewContact(actor.Attached(a), actor.Attached(b), mgl64.Vec3{}, actor.Up, 0.1),
		})
		events.flush()

		if len(ec.events) != 3 {
			t.Fatalf("got %d events, want 3", len(ec.events))
		}
		want := [][2]*actor.RigidBody{{b, c}, {a, nil}, {a, b}}
		for i, e := range ec.events {
			var bodyA, bodyB *actor.RigidBody
			switch ev := e.(type) {
			case CollisionEnterEvent:
				bodyA, bodyB = ev.BodyA, ev.BodyB
			case CollisionStayEvent:
				bodyA, bodyB = ev.BodyA, ev.BodyB
			default:
				t.Fatalf("unexpected event %T", e)
			}
			if bodyA != want[i][0] || bodyB != want[i][1] {
				t.Errorf("event %d is for the wrong pair", i)
			}
		}
	}
}

func TestEvents_NoListenersRecordsNothing(t *testing.T) {
	events := NewEvents()
	body := createSphere(mgl64.Vec3{}, 1)

	events.recordContacts([]constraint.Contact{floorContact(body)})
	events.flush()

	if len(events.currentOrder) != 0 || len(events.buffer) != 0 {
		t.Error("events without listeners should not be tracked")
	}
}

func TestWorld_EmitsFloorEvents(t *testing.T) {
	world := NewWorld(DefaultConfig())
	ec := &eventCapture{}
	subscribeAll(&world.Events, ec)

	body := createSphere(mgl64.Vec3{0, 0.45, 0}, 0.5)
	world.AddBody(body)

	world.Simulate()
	if ec.count(COLLISION_ENTER) != 1 {
		t.Fatalf("got %v, want an enter event", ec.events)
	}

	ec.reset()
	world.Simulate()
	if ec.count(COLLISION_STAY) != 1 {
		t.Fatalf("got %v, want a stay event", ec.events)
	}

	// Teleport the body away from the floor
	ec.reset()
	body.Pose = actor.NewPose(mgl64.Vec3{0, 10, 0}, mgl64.QuatIdent())
	body.Velocity = mgl64.Vec3{}
	world.Simulate()
	if ec.count(COLLISION_EXIT) != 1 {
		t.Fatalf("got %v, want an exit event", ec.events)
	}
}
