package application

import (
	"context"
	"encoding/base64"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/stretchr/testify/mock"
)

const (
	testContractAddress = domain.Address("0xA384435C0a70873DA9872f1C5Ae6795e5A4a93A8")
	testAccount         = "0x1111111111111111111111111111111111111111"
	testOtherAccount    = "0x2222222222222222222222222222222222222222"
)

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func testTokenURI(lines ...string) string {
	svg := "<svg>"
	for _, line := range lines {
		svg += "<text>" + line + "</text>"
	}
	svg += "</svg>"
	image := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
	meta := `{"name":"The Billboard","description":"test","image":"` + image + `"}`
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(meta))
}

func testHistory(prices ...int64) []domain.UpdateRecord {
	records := make([]domain.UpdateRecord, 0, len(prices))
	for i, price := range prices {
		records = append(records, domain.NewUpdateRecord(
			big.NewInt(price),
			"0xtx"+big.NewInt(price).String(),
			uint64(100+i),
			0,
			"line", "number", big.NewInt(int64(i)).String(),
		))
	}
	return records
}

type fakeContract struct {
	mu sync.Mutex

	tokenURI    string
	tokenURIErr error
	price       *big.Int
	priceErr    error
	events      []domain.UpdateRecord
	eventsErr   error

	tokenURICalls int
	priceCalls    int
	eventsCalls   int

	// holdCall blocks the numbered TokenURI call until release is closed.
	holdCall    int
	release     chan struct{}
	enteredRead chan struct{}

	waitFn func(ctx context.Context, hash string) (domain.Receipt, error)
}

var _ ports.BillboardContract = (*fakeContract)(nil)

func newFakeContract() *fakeContract {
	return &fakeContract{
		tokenURI: testTokenURI("Power to all"),
		price:    big.NewInt(100),
		events:   testHistory(5, 10, 3),
	}
}

func (f *fakeContract) Address() domain.Address {
	return testContractAddress
}

func (f *fakeContract) TokenURI(_ context.Context, _ *big.Int) (string, error) {
	f.mu.Lock()
	f.tokenURICalls++
	held := f.holdCall != 0 && f.tokenURICalls == f.holdCall
	release, entered := f.release, f.enteredRead
	f.mu.Unlock()

	if held {
		close(entered)
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenURI, f.tokenURIErr
}

func (f *fakeContract) CurrentPrice(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.priceCalls++
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return new(big.Int).Set(f.price), nil
}

func (f *fakeContract) UpdateEvents(context.Context) ([]domain.UpdateRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.eventsCalls++
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	records := make([]domain.UpdateRecord, len(f.events))
	for i, record := range f.events {
		records[i] = record.Clone()
	}
	return records, nil
}

func (f *fakeContract) EncodeUpdate(first, second, third string) ([]byte, error) {
	return []byte(first + "|" + second + "|" + third), nil
}

func (f *fakeContract) WaitMined(ctx context.Context, hash string) (domain.Receipt, error) {
	f.mu.Lock()
	waitFn := f.waitFn
	f.mu.Unlock()

	if waitFn != nil {
		return waitFn(ctx, hash)
	}
	return domain.Receipt{TxHash: hash, BlockNumber: 200, Status: domain.ReceiptSuccess}, nil
}

func (f *fakeContract) set(fn func(*fakeContract)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// holdRead blocks the nth TokenURI call. The returned channel closes once
// the call is blocked; closing release lets it finish.
func (f *fakeContract) holdRead(n int) (entered <-chan struct{}, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.holdCall = n
	f.release = make(chan struct{})
	f.enteredRead = make(chan struct{})
	return f.enteredRead, f.release
}

func (f *fakeContract) readCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenURICalls
}

type fakeWatcher struct {
	mu         sync.Mutex
	handler    ports.UpdateHandler
	watchCalls int
	stopped    bool
}

func (w *fakeWatcher) Watch(_ context.Context, handler ports.UpdateHandler) (ports.Unsubscribe, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.watchCalls++
	w.handler = handler
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.stopped = true
	}, nil
}

// fire delivers a notice even after stop, the way a late network event would.
func (w *fakeWatcher) fire(notice domain.UpdateNotice) {
	w.mu.Lock()
	handler := w.handler
	w.mu.Unlock()

	if handler != nil {
		handler(notice)
	}
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []domain.TxRequest
	hash  string
	err   error
	onTx  chan domain.TxRequest
	calls int
}

func (s *fakeSender) SendTransaction(_ context.Context, req domain.TxRequest) (string, error) {
	s.mu.Lock()
	s.calls++
	s.sent = append(s.sent, req)
	onTx := s.onTx
	s.mu.Unlock()

	if onTx != nil {
		onTx <- req
	}
	if s.err != nil {
		return "", s.err
	}
	if s.hash == "" {
		return "0xhash", nil
	}
	return s.hash, nil
}

func (s *fakeSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeRemote struct {
	mu sync.Mutex

	pairing   domain.Pairing
	session   domain.RemoteSession
	approve   chan struct{}
	approveFn func() (domain.RemoteSession, error)

	handler      ports.SessionEventHandler
	pairCalls    int
	killed       int
	unsubscribed int

	sender fakeSender
}

var _ ports.RemoteSessionProtocol = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		pairing: domain.Pairing{Topic: "topic-1", URI: "wc:topic-1@1?bridge=https%3A%2F%2Fbridge.example&key=00"},
		session: domain.RemoteSession{
			Topic:     "topic-1",
			Bridge:    "https://bridge.example",
			Accounts:  []string{testOtherAccount},
			ChainID:   4,
			CreatedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func (r *fakeRemote) Pair(context.Context) (domain.Pairing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pairCalls++
	return r.pairing, nil
}

func (r *fakeRemote) AwaitApproval(ctx context.Context, _ domain.Pairing) (domain.RemoteSession, error) {
	r.mu.Lock()
	approve, approveFn, session := r.approve, r.approveFn, r.session
	r.mu.Unlock()

	if approve != nil {
		select {
		case <-approve:
		case <-ctx.Done():
			return domain.RemoteSession{}, ctx.Err()
		}
	}
	if approveFn != nil {
		return approveFn()
	}
	return session, nil
}

func (r *fakeRemote) Subscribe(_ context.Context, _ domain.RemoteSession, handler ports.SessionEventHandler) (ports.Unsubscribe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handler = handler
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.unsubscribed++
	}, nil
}

func (r *fakeRemote) SendTransaction(ctx context.Context, _ domain.RemoteSession, req domain.TxRequest) (string, error) {
	return r.sender.SendTransaction(ctx, req)
}

func (r *fakeRemote) Kill(context.Context, domain.RemoteSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.killed++
	return nil
}

func (r *fakeRemote) emit(event domain.SessionEvent) {
	r.mu.Lock()
	handler := r.handler
	r.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

func (r *fakeRemote) counts() (pairs, killed, unsubscribed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairCalls, r.killed, r.unsubscribed
}

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.ConnectivityEvent
}

func (r *eventRecorder) record(event domain.ConnectivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []domain.ConnectivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ConnectivityEvent(nil), r.events...)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
}
