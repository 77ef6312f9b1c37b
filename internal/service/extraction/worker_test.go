package extraction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/internal/events"
)

type staticLLM struct {
	response string
	err      error
	calls    int
}

func (s *staticLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type fakeDirectory struct {
	mu        sync.Mutex
	processes []core.ProcessContextData
	nextID    int
	listErr   error
}

func (f *fakeDirectory) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	return core.Employee{}, core.ErrNotFound
}

func (f *fakeDirectory) GetRole(ctx context.Context, id string) (core.Role, error) {
	return core.Role{}, core.ErrNotFound
}

func (f *fakeDirectory) GetOrganizationProcesses(ctx context.Context, orgID string, limit int) ([]core.ProcessContextData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.ProcessContextData, len(f.processes))
	copy(out, f.processes)
	return out, nil
}

func (f *fakeDirectory) CreateProcess(ctx context.Context, p core.NewProcess) (core.ProcessContextData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	proc := core.ProcessContextData{
		ID:       fmt.Sprintf("p%d", f.nextID),
		Name:     p.Name,
		IsActive: true,
	}
	f.processes = append(f.processes, proc)
	return proc, nil
}

type fakeMessages struct {
	transcript []core.Message
	err        error
}

func (f *fakeMessages) AddMessage(ctx context.Context, interviewID string, msg core.Message) error {
	return nil
}

func (f *fakeMessages) GetMessages(ctx context.Context, interviewID string) ([]core.Message, error) {
	return f.transcript, f.err
}

// fakeRefs enforces the (interview_id, process_id) uniqueness the schema
// provides in production.
type fakeRefs struct {
	mu   sync.Mutex
	rows map[string]core.ProcessReference
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{rows: make(map[string]core.ProcessReference)}
}

func (f *fakeRefs) CreateReference(ctx context.Context, ref core.ProcessReference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ref.InterviewID + "|" + ref.ProcessID
	if _, exists := f.rows[key]; exists {
		return nil
	}
	f.rows[key] = ref
	return nil
}

func (f *fakeRefs) GetFirstReference(ctx context.Context, processID string) (core.ProcessReference, error) {
	return core.ProcessReference{}, core.ErrNotFound
}

func (f *fakeRefs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func spanishTranscript() []core.Message {
	return []core.Message{
		{Role: core.RoleAssistant, Content: "¿Cuáles son tus tareas?"},
		{Role: core.RoleUser, Content: "Yo apruebo las compras mayores a $1000 y cada mes genero la nómina."},
	}
}

const twoProcessResponse = `[
  {"name": "Aprobación de Compras", "description": "Aprobación de compras mayores a $1000", "steps": ["Recibir solicitud", "Revisar monto", "Aprobar o rechazar"], "roles": ["Jefe de Compras"], "inputs": ["Solicitud"], "outputs": ["Orden aprobada"]},
  {"name": "Generación de Nómina", "description": "Nómina mensual", "steps": ["Recolectar horas", "Calcular", "Pagar"], "roles": ["RRHH"], "inputs": ["Horas"], "outputs": ["Pagos"]}
]`

func testEvent() core.CompletedEvent {
	return core.CompletedEvent{
		InterviewID:    "iv1",
		OrganizationID: "org1",
		EmployeeID:     "e1",
		Language:       "es",
	}
}

func TestProcessInterview_CreatesProcessesAndReferences(t *testing.T) {
	dir := &fakeDirectory{}
	refs := newFakeRefs()
	w := NewWorker(events.NewMemoryBus(), &staticLLM{response: twoProcessResponse}, dir, &fakeMessages{transcript: spanishTranscript()}, refs)

	if err := w.ProcessInterview(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dir.processes) != 2 {
		t.Errorf("expected 2 processes created, got %d", len(dir.processes))
	}
	if refs.count() != 2 {
		t.Errorf("expected 2 references, got %d", refs.count())
	}
}

func TestProcessInterview_DuplicateDeliveryIsIdempotent(t *testing.T) {
	dir := &fakeDirectory{}
	refs := newFakeRefs()
	w := NewWorker(events.NewMemoryBus(), &staticLLM{response: twoProcessResponse}, dir, &fakeMessages{transcript: spanishTranscript()}, refs)
	ctx := context.Background()

	if err := w.ProcessInterview(ctx, testEvent()); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	if err := w.ProcessInterview(ctx, testEvent()); err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	// The natural-key check finds the first pass's processes on the second.
	if len(dir.processes) != 2 {
		t.Errorf("expected 2 processes after redelivery, got %d", len(dir.processes))
	}
	if refs.count() != 2 {
		t.Errorf("expected 2 references after redelivery, got %d", refs.count())
	}
}

func TestProcessInterview_ExistingProcessNotRecreated(t *testing.T) {
	dir := &fakeDirectory{processes: []core.ProcessContextData{
		{ID: "p-existing", Name: "aprobación de compras", IsActive: true},
	}}
	refs := newFakeRefs()
	w := NewWorker(events.NewMemoryBus(), &staticLLM{response: twoProcessResponse}, dir, &fakeMessages{transcript: spanishTranscript()}, refs)

	if err := w.ProcessInterview(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Case-insensitive natural-key match: only the payroll process is new.
	if len(dir.processes) != 2 {
		t.Errorf("expected 1 new process on top of 1 existing, got %d total", len(dir.processes))
	}
	if refs.count() != 2 {
		t.Errorf("expected references for both processes, got %d", refs.count())
	}
}

func TestProcessInterview_MalformedResponseIsInvalid(t *testing.T) {
	w := NewWorker(events.NewMemoryBus(), &staticLLM{response: "I could not find any JSON to give you"}, &fakeDirectory{}, &fakeMessages{transcript: spanishTranscript()}, newFakeRefs())

	err := w.ProcessInterview(context.Background(), testEvent())
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
	if !strings.Contains(err.Error(), "invalid") {
		t.Errorf("expected invalid classification, got %v", err)
	}
}

func TestProcessInterview_EmptyTranscriptIsNoop(t *testing.T) {
	llm := &staticLLM{response: "[]"}
	w := NewWorker(events.NewMemoryBus(), llm, &fakeDirectory{}, &fakeMessages{}, newFakeRefs())

	if err := w.ProcessInterview(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("model must not be called for an empty transcript, got %d calls", llm.calls)
	}
}

func TestProcessInterview_EmptyArrayIsValid(t *testing.T) {
	dir := &fakeDirectory{}
	refs := newFakeRefs()
	w := NewWorker(events.NewMemoryBus(), &staticLLM{response: "[]"}, dir, &fakeMessages{transcript: spanishTranscript()}, refs)

	if err := w.ProcessInterview(context.Background(), testEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dir.processes) != 0 || refs.count() != 0 {
		t.Error("empty extraction must create nothing")
	}
}

func TestWorker_ConsumesPublishedEvents(t *testing.T) {
	bus := events.NewMemoryBus()
	dir := &fakeDirectory{}
	refs := newFakeRefs()
	w := NewWorker(bus, &staticLLM{response: twoProcessResponse}, dir, &fakeMessages{transcript: spanishTranscript()}, refs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	// MemoryBus dispatches synchronously, but the subscription happens in
	// Start; give it a moment to register.
	for i := 0; i < 100; i++ {
		if err := bus.PublishCompleted(ctx, testEvent()); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if refs.count() > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done

	if refs.count() != 2 {
		t.Errorf("expected 2 references, got %d", refs.count())
	}
}
