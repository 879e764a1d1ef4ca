package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/vpbank/snmpmibd/mib"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/server"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func freePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("freePort: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).Port
}

func startServer(t *testing.T, agent *mib.Agent, communities []string) (int, context.CancelFunc) {
	t.Helper()
	port := freePort(t)
	srv := server.New(server.Options{Port: port, Communities: communities}, agent, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stopped := false
	cleanup := func() {
		if !stopped {
			stopped = true
			srv.Stop()
		}
	}
	t.Cleanup(cleanup)
	time.Sleep(20 * time.Millisecond) // let the socket settle, as trapreceiver_test does
	return port, cleanup
}

func newClient(t *testing.T, port int, community string) *gosnmp.GoSNMP {
	t.Helper()
	g := &gosnmp.GoSNMP{
		Target:    "127.0.0.1",
		Port:      uint16(port),
		Community: community,
		Version:   gosnmp.Version1,
		Timeout:   2 * time.Second,
		Retries:   0,
	}
	if err := g.Connect(); err != nil {
		t.Fatalf("client Connect: %v", err)
	}
	t.Cleanup(func() { g.Conn.Close() })
	return g
}

func newTestAgent() *mib.Agent {
	a := mib.NewAgent(mib.SystemInfo{Descr: "test"}, nil)
	_ = a.AddPlugin(mib.MustParseOid("1.2.3"), func(string) (mib.Shape, error) { return 42, nil })
	_ = a.AddPlugin(mib.MustParseOid("3.2.1"), func(string) (mib.Shape, error) {
		return []int{1, 1, 2, 3, 5, 8, 13}, nil
	})
	return a
}

// ─────────────────────────────────────────────────────────────────────────────
// Get
// ─────────────────────────────────────────────────────────────────────────────

func TestRealUDP_Get_HappyPath(t *testing.T) {
	port, _ := startServer(t, newTestAgent(), []string{"public"})
	client := newClient(t, port, "public")

	resp, err := client.Get([]string{".1.2.3"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Variables) != 1 || resp.Variables[0].Value != 42 {
		t.Fatalf("Get 1.2.3 = %+v, want 42", resp.Variables)
	}
}

func TestRealUDP_Get_WrongCommunity_Dropped(t *testing.T) {
	port, _ := startServer(t, newTestAgent(), []string{"public"})
	client := newClient(t, port, "somethingfunny")
	client.Timeout = 300 * time.Millisecond

	_, err := client.Get([]string{".1.2.3"})
	if err == nil {
		t.Fatal("Get with an unrecognised community should time out, got a response")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetNext and the SNMPv1 off-end error convention
// ─────────────────────────────────────────────────────────────────────────────

func TestRealUDP_GetNext_FibonacciSequence(t *testing.T) {
	port, _ := startServer(t, newTestAgent(), []string{"public"})
	client := newClient(t, port, "public")

	resp, err := client.GetNext([]string{".3.2.1"})
	if err != nil {
		t.Fatalf("GetNext: %v", err)
	}
	if resp.Variables[0].Name != ".3.2.1.0" || resp.Variables[0].Value != 1 {
		t.Errorf("GetNext 3.2.1 = %+v, want name 3.2.1.0 value 1", resp.Variables[0])
	}
}

func TestRealUDP_GetNext_OffEnd_SetsErrorStatusAndRewritesName(t *testing.T) {
	port, _ := startServer(t, newTestAgent(), []string{"public"})
	client := newClient(t, port, "public")

	resp, err := client.GetNext([]string{".3.2.1.4", ".3.2.1.6"})
	if err != nil {
		t.Fatalf("GetNext: %v", err)
	}
	if len(resp.Variables) != 2 {
		t.Fatalf("expected 2 varbinds, got %d", len(resp.Variables))
	}
	if resp.Variables[0].Name != ".3.2.1.5" || resp.Variables[0].Value != 8 {
		t.Errorf("first varbind = %+v, want name 3.2.1.5 value 8", resp.Variables[0])
	}
	if resp.Variables[1].Name != ".0" {
		t.Errorf("off-end varbind name = %q, want \".0\"", resp.Variables[1].Name)
	}
	if resp.Error != gosnmp.NoSuchName {
		t.Errorf("Error = %v, want NoSuchName", resp.Error)
	}
	if resp.ErrorIndex != 1 {
		t.Errorf("ErrorIndex = %d, want 1 (0-based index of the failing varbind)", resp.ErrorIndex)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Run / graceful shutdown
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_StopsOnContextCancel(t *testing.T) {
	port := freePort(t)
	agent := newTestAgent()
	srv := server.New(server.Options{Port: port, Communities: []string{"public"}}, agent, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error after cancel: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return within 3s of context cancel")
	}
}

func TestNew_BadPort_StartReturnsError(t *testing.T) {
	agent := newTestAgent()
	srv := server.New(server.Options{Port: -1}, agent, nil)
	if err := srv.Start(); err == nil {
		t.Fatal("Start with an invalid port should return an error")
	}
}

