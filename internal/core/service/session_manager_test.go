package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/domain"
	"github.com/sowrin-paul/uiu-healthcare-portal/internal/core/ports"
)

// --- Stub collaborators ---

type stubStore struct {
	stored   ports.StoredSession
	loadErr  error
	saveErr  error
	saves    int
	clears   int
}

func (s *stubStore) Save(_ context.Context, v ports.StoredSession) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.stored = v
	s.saves++
	return nil
}

func (s *stubStore) Load(_ context.Context) (ports.StoredSession, error) {
	return s.stored, s.loadErr
}

func (s *stubStore) Clear(_ context.Context) error {
	s.stored = ports.StoredSession{}
	s.clears++
	return nil
}

type stubAuth struct {
	loginFn     func(identifier, password string) (*ports.LoginResult, error)
	verifyFn    func(credential string) (*domain.User, error)
	logoutErr   error
	logoutCalls int
}

func (a *stubAuth) Login(_ context.Context, identifier, password string) (*ports.LoginResult, error) {
	if a.loginFn != nil {
		return a.loginFn(identifier, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (a *stubAuth) Register(_ context.Context, reg ports.Registration) (*ports.RegisterResult, error) {
	return &ports.RegisterResult{
		User: &domain.User{
			ID:       "new-user",
			UIUID:    reg.UIUID,
			Name:     reg.Name,
			Email:    reg.Email,
			Role:     reg.Role,
			IsActive: true,
		},
		Message: "check your email",
	}, nil
}

func (a *stubAuth) VerifyCredential(_ context.Context, credential string) (*domain.User, error) {
	if a.verifyFn != nil {
		return a.verifyFn(credential)
	}
	return nil, domain.ErrUnauthorized
}

func (a *stubAuth) Logout(_ context.Context, _ string) error {
	a.logoutCalls++
	return a.logoutErr
}

func (a *stubAuth) CheckIdentifierAvailable(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (a *stubAuth) CheckEmailAvailable(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func testUser() *domain.User {
	return &domain.User{
		ID:         "u-1",
		UIUID:      "01112345",
		Name:       "Test Student",
		Email:      "test@uiu.ac.bd",
		Role:       domain.RoleStudent,
		IsActive:   true,
		IsVerified: true,
	}
}

func newManager(store ports.SessionStore, auth ports.AuthenticationService) *SessionManager {
	return NewSessionManager(store, auth, NewSessionValidator(auth), zerolog.Nop())
}

const goodCredential = "credential-long-enough"

// --- Bootstrap ---

func TestBootstrap_EmptyStoreIsAnonymous(t *testing.T) {
	m := newManager(&stubStore{}, &stubAuth{})

	if got := m.Current().Status; got != domain.StatusUnknown {
		t.Fatalf("expected unknown before bootstrap, got %s", got)
	}

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous, got %s", got)
	}
}

func TestBootstrap_RestoresWithoutNetwork(t *testing.T) {
	store := &stubStore{stored: ports.StoredSession{
		Credential: goodCredential,
		User:       testUser(),
	}}
	auth := &stubAuth{verifyFn: func(string) (*domain.User, error) {
		t.Fatalf("bootstrap must not hit the network")
		return nil, nil
	}}
	m := newManager(store, auth)

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	s := m.Current()
	if s.Status != domain.StatusAuthenticated {
		t.Fatalf("expected authenticated, got %s", s.Status)
	}
	if !s.WellFormed() {
		t.Fatalf("restored session violates invariant: %+v", s)
	}
	if s.User.UIUID != "01112345" {
		t.Fatalf("wrong user restored: %+v", s.User)
	}
}

func TestBootstrap_ShortCredentialClearsStore(t *testing.T) {
	store := &stubStore{stored: ports.StoredSession{
		Credential: "short",
		User:       testUser(),
	}}
	m := newManager(store, &stubAuth{})

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous, got %s", got)
	}
	if store.clears == 0 {
		t.Fatalf("store not cleared")
	}
}

func TestBootstrap_UnreadableStoreIsAnonymous(t *testing.T) {
	store := &stubStore{loadErr: errors.New("backend down")}
	m := newManager(store, &stubAuth{})

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap must not fail on store errors: %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous, got %s", got)
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{loginFn: func(identifier, password string) (*ports.LoginResult, error) {
		if identifier != "admin" || password != "admin123" {
			return nil, domain.ErrInvalidCredentials
		}
		u := testUser()
		u.Role = domain.RoleAdmin
		return &ports.LoginResult{User: u, Credential: goodCredential, ExpiresIn: time.Hour}, nil
	}}
	m := newManager(store, auth)

	user, err := m.Login(context.Background(), "admin", "admin123", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	s := m.Current()
	if s.Status != domain.StatusAuthenticated || !s.WellFormed() {
		t.Fatalf("bad session after login: %+v", s)
	}
	if s.LastLoginAt.IsZero() {
		t.Fatalf("last login timestamp not recorded")
	}
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}
	if store.stored.Credential != goodCredential {
		t.Fatalf("credential not persisted")
	}
}

func TestLogin_WrongPasswordLeavesEverythingUntouched(t *testing.T) {
	store := &stubStore{}
	m := newManager(store, &stubAuth{})
	_ = m.Bootstrap(context.Background())

	_, err := m.Login(context.Background(), "admin", "wrong", true)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous after failed login, got %s", got)
	}
	if store.saves != 0 || store.clears != 0 {
		t.Fatalf("store touched on failed login: saves=%d clears=%d", store.saves, store.clears)
	}
}

func TestLogin_WithoutRememberMeSkipsPersistence(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{loginFn: func(string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
	}}
	m := newManager(store, auth)

	if _, err := m.Login(context.Background(), "x", "y", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	if m.Current().Status != domain.StatusAuthenticated {
		t.Fatalf("session not authenticated")
	}
	if store.saves != 0 {
		t.Fatalf("session persisted despite remember_me=false")
	}
}

func TestLogin_WithoutRememberMeRefreshStaysUnpersisted(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		verifyFn: func(string) (*domain.User, error) {
			return testUser(), nil
		},
	}
	m := newManager(store, auth)

	if _, err := m.Login(context.Background(), "x", "y", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := m.RefreshProfile(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("refresh persisted a session declined with remember_me=false")
	}
}

func TestLogin_WithoutRememberMeUpdateStaysUnpersisted(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{loginFn: func(string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
	}}
	m := newManager(store, auth)

	if _, err := m.Login(context.Background(), "x", "y", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	name := "Renamed"
	if _, err := m.UpdateUser(context.Background(), domain.UserPatch{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("profile update persisted a session declined with remember_me=false")
	}
}

func TestBootstrap_RestoredSessionKeepsPersisting(t *testing.T) {
	store := &stubStore{stored: ports.StoredSession{
		Credential: goodCredential,
		User:       testUser(),
	}}
	auth := &stubAuth{verifyFn: func(string) (*domain.User, error) {
		return testUser(), nil
	}}
	m := newManager(store, auth)

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := m.RefreshProfile(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("refresh after restore should re-persist, saves = %d", store.saves)
	}
}

// --- Register ---

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	m := newManager(&stubStore{}, &stubAuth{})
	_ = m.Bootstrap(context.Background())

	res, err := m.Register(context.Background(), ports.Registration{
		UIUID: "01155555",
		Name:  "Fresh User",
		Email: "fresh@uiu.ac.bd",
		Role:  domain.RoleStudent,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.IsVerified {
		t.Fatalf("new account must start unverified")
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("register must not sign in, got %s", got)
	}
}

// --- Logout ---

func TestLogout_SwallowsRemoteFailure(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		logoutErr: &domain.NetworkError{Op: "logout", Err: errors.New("timeout")},
	}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	m.Logout(context.Background())

	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous after logout, got %s", got)
	}
	if !store.stored.Empty() {
		t.Fatalf("store not emptied on logout")
	}
	if auth.logoutCalls != 1 {
		t.Fatalf("expected 1 remote logout call, got %d", auth.logoutCalls)
	}
}

func TestLogout_SecondCallIsNoOp(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{loginFn: func(string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
	}}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	m.Logout(context.Background())
	clears := store.clears
	m.Logout(context.Background())

	if auth.logoutCalls != 1 {
		t.Fatalf("second logout must not call remote, got %d calls", auth.logoutCalls)
	}
	if store.clears != clears {
		t.Fatalf("second logout must not touch the store again")
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("expected anonymous, got %s", got)
	}
}

// --- RefreshProfile ---

func TestRefreshProfile_UpdatesUser(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		verifyFn: func(credential string) (*domain.User, error) {
			if credential != goodCredential {
				return nil, domain.ErrUnauthorized
			}
			u := testUser()
			u.Name = "Renamed Student"
			return u, nil
		},
	}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	user, err := m.RefreshProfile(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if user.Name != "Renamed Student" {
		t.Fatalf("profile not refreshed: %+v", user)
	}
	if m.Current().User.Name != "Renamed Student" {
		t.Fatalf("session user not updated")
	}
	if store.stored.User.Name != "Renamed Student" {
		t.Fatalf("refreshed profile not re-persisted")
	}
}

func TestRefreshProfile_UnauthorizedIsImplicitLogout(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		verifyFn: func(string) (*domain.User, error) {
			return nil, domain.ErrUnauthorized
		},
	}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	_, err := m.RefreshProfile(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized rethrown, got %v", err)
	}

	s := m.Current()
	if s.Status != domain.StatusAnonymous {
		t.Fatalf("expected anonymous after rejection, got %s", s.Status)
	}
	if s.LastError != ReasonSessionExpired {
		t.Fatalf("expected %q reason, got %q", ReasonSessionExpired, s.LastError)
	}
	if !store.stored.Empty() {
		t.Fatalf("store not cleared on implicit logout")
	}
}

func TestRefreshProfile_NetworkErrorKeepsSession(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		verifyFn: func(string) (*domain.User, error) {
			return nil, &domain.NetworkError{Op: "verify", Err: errors.New("timeout")}
		},
	}
	m := newManager(&stubStore{}, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	_, err := m.RefreshProfile(context.Background())
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAuthenticated {
		t.Fatalf("transport failure must keep the session, got %s", got)
	}
}

func TestRefreshProfile_Anonymous(t *testing.T) {
	m := newManager(&stubStore{}, &stubAuth{})
	_ = m.Bootstrap(context.Background())

	if _, err := m.RefreshProfile(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous refresh, got %v", err)
	}
}

// A logout racing an in-flight refresh must win: the late refresh result is
// discarded and cannot resurrect the cleared session.
func TestRefreshProfile_LogoutRaceDiscardsResult(t *testing.T) {
	verifyStarted := make(chan struct{})
	verifyRelease := make(chan struct{})

	store := &stubStore{}
	auth := &stubAuth{
		loginFn: func(string, string) (*ports.LoginResult, error) {
			return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
		},
		verifyFn: func(string) (*domain.User, error) {
			close(verifyStarted)
			<-verifyRelease
			return testUser(), nil
		},
	}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	refreshDone := make(chan error, 1)
	go func() {
		_, err := m.RefreshProfile(context.Background())
		refreshDone <- err
	}()

	<-verifyStarted
	m.Logout(context.Background())
	close(verifyRelease)

	if err := <-refreshDone; !errors.Is(err, domain.ErrSessionSuperseded) {
		t.Fatalf("expected ErrSessionSuperseded, got %v", err)
	}
	if got := m.Current().Status; got != domain.StatusAnonymous {
		t.Fatalf("late refresh resurrected the session: %s", got)
	}
	if !store.stored.Empty() {
		t.Fatalf("late refresh re-persisted a cleared session")
	}
}

// --- UpdateUser ---

func TestUpdateUser_MergesAndPersists(t *testing.T) {
	store := &stubStore{}
	auth := &stubAuth{loginFn: func(string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
	}}
	m := newManager(store, auth)
	_, _ = m.Login(context.Background(), "x", "y", true)

	phone := "01811111111"
	user, err := m.UpdateUser(context.Background(), domain.UserPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.Phone != phone {
		t.Fatalf("patch not applied: %+v", user)
	}
	if store.stored.User.Phone != phone {
		t.Fatalf("update not persisted")
	}
}

func TestUpdateUser_AnonymousIsRejected(t *testing.T) {
	m := newManager(&stubStore{}, &stubAuth{})
	_ = m.Bootstrap(context.Background())

	name := "Nobody"
	if _, err := m.UpdateUser(context.Background(), domain.UserPatch{Name: &name}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// --- Subscriptions ---

func TestSubscribe_NotifiedOnTransitions(t *testing.T) {
	auth := &stubAuth{loginFn: func(string, string) (*ports.LoginResult, error) {
		return &ports.LoginResult{User: testUser(), Credential: goodCredential}, nil
	}}
	m := newManager(&stubStore{}, auth)

	var seen []domain.SessionStatus
	m.Subscribe(func(s domain.Session) {
		seen = append(seen, s.Status)
	})

	_ = m.Bootstrap(context.Background())
	_, _ = m.Login(context.Background(), "x", "y", false)
	m.Logout(context.Background())

	want := []domain.SessionStatus{domain.StatusAnonymous, domain.StatusAuthenticated, domain.StatusAnonymous}
	if len(seen) != len(want) {
		t.Fatalf("expected %d notifications, got %d (%v)", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}
