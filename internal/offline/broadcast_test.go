package offline

import "testing"

func TestBroadcasterNotifiesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Notify(Message{Type: MessageOfflineReady})

	for i, ch := range []<-chan Message{ch1, ch2} {
		select {
		case msg := <-ch:
			if msg.Type != MessageOfflineReady {
				t.Errorf("Subscriber %d: expected %s, got %s", i, MessageOfflineReady, msg.Type)
			}
		default:
			t.Errorf("Subscriber %d: expected a message", i)
		}
	}
}

func TestBroadcasterSkipsFullSubscriber(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	// Fill the subscriber's buffer and notify again; the second
	// message is dropped rather than blocking the broadcaster.
	b.Notify(Message{Type: MessageOfflineReady})
	b.Notify(Message{Type: MessageOfflineReady})

	<-ch
	select {
	case <-ch:
		t.Error("Expected the second message to be dropped")
	default:
	}
}

func TestBroadcasterCancelDetaches(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe()
	cancel()
	cancel() // cancelling twice is safe

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after cancel")
	}

	// Notify after cancel must not panic on the closed channel.
	b.Notify(Message{Type: MessageOfflineReady})
}
