package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/config"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/status"
	"github.com/matheus3301/conversa/internal/store"
	"github.com/matheus3301/conversa/internal/workspace"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// startDaemon boots the full fx graph under a temporary CONVERSA_HOME.
func startDaemon(t *testing.T, name string) (*fx.App, *backend.Client) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Sync.Mode = "realtime"

	var be *backend.Client
	app := fx.New(
		Module(Params{Workspace: name, Config: &cfg}),
		fx.Populate(&be),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx.New() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return app, be
}

func stopDaemon(t *testing.T, app *fx.App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func dial(t *testing.T, name string) *rpc.Client {
	t.Helper()
	conn, err := grpc.NewClient(
		"unix://"+workspace.SocketPath(name),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewClient(conn)
}

// shortHome keeps socket paths under the 104-byte limit on macOS.
func shortHome(t *testing.T) {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "conversa-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv(workspace.HomeEnv, dir)
}

func TestDaemonLifecycle(t *testing.T) {
	shortHome(t)
	app, be := startDaemon(t, "test")
	client := dial(t, "test")
	ctx := context.Background()

	resp, err := client.GetSessionStatus(ctx, &rpc.GetSessionStatusRequest{})
	if err != nil {
		t.Fatalf("GetSessionStatus error = %v", err)
	}
	if resp.Workspace != "test" {
		t.Errorf("workspace = %q, want test", resp.Workspace)
	}
	if resp.Status != string(status.Ready) {
		t.Errorf("status = %q, want READY", resp.Status)
	}
	if !resp.Connected {
		t.Error("expected connected = true")
	}

	self, err := be.GetProfile(ctx, "me")
	if err != nil {
		t.Fatalf("self profile: %v", err)
	}
	if self.Status != conversation.StatusOnline {
		t.Errorf("self status = %q, want online", self.Status)
	}

	contacts, err := client.ListContacts(ctx, &rpc.ListContactsRequest{})
	if err != nil {
		t.Fatalf("ListContacts error = %v", err)
	}
	if len(contacts.Contacts) != 0 {
		t.Errorf("expected 0 contacts, got %d", len(contacts.Contacts))
	}

	if err := be.UpsertProfile(ctx, &store.Profile{ID: "ana", Name: "Ana", Status: conversation.StatusOnline}); err != nil {
		t.Fatal(err)
	}
	if _, err := client.OpenConversation(ctx, &rpc.PeerRequest{Peer: "ana"}); err != nil {
		t.Fatalf("OpenConversation error = %v", err)
	}
	if _, err := client.SetText(ctx, &rpc.SetTextRequest{Peer: "ana", Text: "oi"}); err != nil {
		t.Fatalf("SetText error = %v", err)
	}
	sent, err := client.Send(ctx, &rpc.PeerRequest{Peer: "ana"})
	if err != nil {
		t.Fatalf("Send error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		view, err := client.GetView(ctx, &rpc.PeerRequest{Peer: "ana"})
		if err != nil {
			t.Fatalf("GetView error = %v", err)
		}
		if len(view.Groups) == 1 && len(view.Groups[0].Messages) == 1 {
			if got := view.Groups[0].Messages[0].ID; got != sent.MessageID {
				t.Errorf("message id = %q, want %q", got, sent.MessageID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sent message never reached the view")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopDaemon(t, app)

	if _, err := os.Stat(workspace.SocketPath("test")); !os.IsNotExist(err) {
		t.Error("socket file still present after stop")
	}
	if _, err := os.Stat(workspace.LockPath("test")); !os.IsNotExist(err) {
		t.Error("lock file still present after stop")
	}
}

func TestSecondDaemonFailsOnHeldLock(t *testing.T) {
	shortHome(t)
	app, _ := startDaemon(t, "busy")
	defer stopDaemon(t, app)

	cfg := config.Defaults()
	second := fx.New(Module(Params{Workspace: "busy", Config: &cfg}), fx.NopLogger)
	err := second.Err()
	if err == nil || !strings.Contains(err.Error(), "workspace lock held") {
		t.Fatalf("expected held lock error, got %v", err)
	}
	if _, err := os.Stat(workspace.SocketPath("busy")); err != nil {
		t.Errorf("first daemon socket removed: %v", err)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	shortHome(t)
	cfg := config.Defaults()
	cfg.Storage.Driver = "ftp"
	app := fx.New(Module(Params{Workspace: "bad", Config: &cfg}), fx.NopLogger)
	if app.Err() == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestEnsureSelf(t *testing.T) {
	ctx := context.Background()
	be := backend.New(backend.Config{DBPath: filepath.Join(t.TempDir(), "conversa.db")}, nil, bus.New(), nil)
	if err := be.Connect(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = be.Close() })
	cfg := config.Defaults()

	if err := ensureSelf(ctx, be, &cfg); err != nil {
		t.Fatalf("ensureSelf() on empty backend error = %v", err)
	}
	self, err := be.GetProfile(ctx, cfg.SelfID)
	if err != nil || self == nil {
		t.Fatalf("self profile = %v, %v", self, err)
	}
	if self.Name != cfg.SelfName || self.Status != conversation.StatusOnline {
		t.Errorf("self = %+v, want name %q online", self, cfg.SelfName)
	}

	if err := be.UpsertProfile(ctx, &store.Profile{ID: cfg.SelfID, Name: "Renomeado", Status: conversation.StatusOffline}); err != nil {
		t.Fatal(err)
	}
	if err := ensureSelf(ctx, be, &cfg); err != nil {
		t.Fatalf("ensureSelf() on existing profile error = %v", err)
	}
	self, err = be.GetProfile(ctx, cfg.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	if self.Name != "Renomeado" {
		t.Errorf("name = %q, want the stored name kept", self.Name)
	}
	if self.Status != conversation.StatusOnline {
		t.Errorf("status = %q, want online", self.Status)
	}
}
