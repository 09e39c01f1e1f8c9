package lifecycle

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDaemon struct {
	done      chan struct{}
	reloadErr error
	reloads   int
	shutdowns int
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{done: make(chan struct{})}
}

func (d *fakeDaemon) Reload(ctx context.Context) error {
	d.reloads++
	return d.reloadErr
}

func (d *fakeDaemon) Done() <-chan struct{} {
	return d.done
}

func (d *fakeDaemon) Shutdown() {
	d.shutdowns++
}

// Fake systemd notify socket collecting messages
func listenNotify(t *testing.T) (conn *net.UnixConn) {
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	t.Setenv(EnvNameNotifySocket, path)
	return
}

func readNotify(t *testing.T, conn *net.UnixConn) (msgs []string) {
	buf := make([]byte, 4096)
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		msgs = append(msgs, string(buf[:n]))
	}
}

func TestNotifyWithoutSocket(t *testing.T) {
	t.Setenv(EnvNameNotifySocket, "")
	assert.NoError(t, NotifyReady(context.Background()))
	assert.NoError(t, NotifyStatus(context.Background(), "idle"))
}

func TestNotifyMessages(t *testing.T) {
	conn := listenNotify(t)
	ctx := context.Background()

	require.NoError(t, NotifyReady(ctx))
	require.NoError(t, NotifyStatus(ctx, "forwarding"))
	require.NoError(t, NotifyStopping(ctx))
	require.NoError(t, NotifyReload(ctx))

	msgs := readNotify(t, conn)
	require.Len(t, msgs, 4)
	assert.Equal(t, "READY=1", msgs[0])
	assert.Equal(t, "STATUS=forwarding", msgs[1])
	assert.Equal(t, "STOPPING=1", msgs[2])
	assert.True(t, strings.HasPrefix(msgs[3], "RELOADING=1\nMONOTONIC_USEC="), msgs[3])
}

func TestNotifyDialFailure(t *testing.T) {
	t.Setenv(EnvNameNotifySocket, filepath.Join(t.TempDir(), "absent.sock"))
	assert.Error(t, NotifyReady(context.Background()))
}

func TestHandleSignalsTerminate(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT} {
		t.Run(sig.String(), func(t *testing.T) {
			daemon := newFakeDaemon()
			sigChan := make(chan os.Signal, 1)
			sigChan <- sig

			handleSignals(context.Background(), daemon, sigChan)
			assert.Equal(t, 1, daemon.shutdowns)
			assert.Equal(t, 0, daemon.reloads)
		})
	}
}

func TestHandleSignalsReloadThenStop(t *testing.T) {
	conn := listenNotify(t)

	daemon := newFakeDaemon()
	daemon.reloadErr = errors.New("bad config")
	sigChan := make(chan os.Signal, 3)
	sigChan <- syscall.SIGHUP
	sigChan <- syscall.SIGHUP

	finished := make(chan struct{})
	go func() {
		handleSignals(context.Background(), daemon, sigChan)
		close(finished)
	}()

	// reloads never end the handler
	time.Sleep(100 * time.Millisecond)
	select {
	case <-finished:
		t.Fatal("handler returned after reload")
	default:
	}

	sigChan <- syscall.SIGTERM
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after SIGTERM")
	}

	assert.Equal(t, 2, daemon.reloads)
	assert.Equal(t, 1, daemon.shutdowns)

	msgs := readNotify(t, conn)
	assert.Contains(t, msgs, "STATUS="+ReloadFailedStatus)
	assert.Contains(t, msgs, "READY=1")
	assert.Equal(t, "STOPPING=1", msgs[len(msgs)-1])
}

func TestHandleSignalsInputsFinished(t *testing.T) {
	daemon := newFakeDaemon()
	close(daemon.done)

	handleSignals(context.Background(), daemon, make(chan os.Signal))
	assert.Equal(t, 1, daemon.shutdowns)
}
