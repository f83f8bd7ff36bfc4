package monitoring

import (
	"strconv"
	"sync"
	"time"
)

// Notification is one Alertmanager webhook delivery, annotated with a
// sequence id and receipt time.
type Notification map[string]interface{}

// Receiver keeps received notifications in memory so the frontend can poll
// for alerts it has not yet shown.
type Receiver struct {
	mu            sync.Mutex
	notifications []Notification
	nextID        int
}

func NewReceiver() *Receiver {
	return &Receiver{nextID: 1}
}

func (r *Receiver) Store(payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification := make(Notification, len(payload)+2)
	for k, v := range payload {
		notification[k] = v
	}
	notification["id"] = strconv.Itoa(r.nextID)
	notification["notified"] = time.Now().UTC().Format(time.RFC3339Nano)
	r.nextID++

	r.notifications = append(r.notifications, notification)
}

// Since returns the notifications received after the one with the given id.
// "last" returns only the most recent one, the empty string returns all, and
// an unknown id returns nothing.
func (r *Receiver) Since(from string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notifications) == 0 {
		return []Notification{}
	}

	switch from {
	case "":
		out := make([]Notification, len(r.notifications))
		copy(out, r.notifications)
		return out
	case "last":
		return []Notification{r.notifications[len(r.notifications)-1]}
	}

	for i, n := range r.notifications {
		if n["id"] == from {
			out := make([]Notification, len(r.notifications)-i-1)
			copy(out, r.notifications[i+1:])
			return out
		}
	}
	return []Notification{}
}
