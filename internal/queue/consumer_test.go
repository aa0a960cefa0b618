package queue

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestFormatLine(t *testing.T) {
	out := "2024-05-01T10:00:00Z"
	line := FormatLine(ParkingEvent{
		ID:                   "ev-1",
		Type:                 EventExited,
		SessionID:            4,
		ClientID:             1,
		ParkingID:            2,
		TimeIn:               "2024-05-01T09:00:00Z",
		TimeOut:              &out,
		CountAvailablePlaces: 10,
		OccurredAt:           out,
	})
	want := "[2024-05-01T10:00:00Z] Client exited | session_id=4 | client_id=1 | parking_id=2 | time_in=2024-05-01T09:00:00Z | time_out=2024-05-01T10:00:00Z | available=10 | event_id=ev-1\n"
	if line != want {
		t.Errorf("expected %q, got %q", want, line)
	}
}

func TestHandleMessageAppends(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := &Consumer{Dir: filepath.Join(t.TempDir(), "logs"), Log: log}

	body := `{"id":"a","type":"parking.entered","session_id":1,"client_id":1,"parking_id":1,"time_in":"t0","count_available_places":9,"occurred_at":"t0"}`
	for i := 0; i < 2; i++ {
		if err := c.HandleMessage([]byte(body)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	data, err := os.ReadFile(filepath.Join(c.Dir, "parking.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Client entered") || !strings.Contains(lines[0], "time_out=-") {
		t.Errorf("unexpected line %q", lines[0])
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	c := &Consumer{Dir: t.TempDir(), Log: logrus.New()}
	if err := c.HandleMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid payload")
	}
}
