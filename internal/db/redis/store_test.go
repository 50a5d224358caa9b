package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/docsearch/internal/db"
)

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newStoreWithClient(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStoreWithClient(c)
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected db.Error with op PING, got %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := newStoreWithClient(c)
	if err := s.WaitForReady(context.Background(), 250*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "docsearch:resp:abc")).
		Return(mock.Result(mock.RedisBlobString(`{"total":1}`)))

	s := newStoreWithClient(c)
	data, err := s.Get(context.Background(), "docsearch:resp:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"total":1}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := newStoreWithClient(c)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_NetworkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.ErrorResult(errors.New("broken pipe")))

	s := newStoreWithClient(c)
	_, err := s.Get(context.Background(), "k")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := newStoreWithClient(c)
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SET" })).
		Return(mock.ErrorResult(errors.New("OOM")))

	s := newStoreWithClient(c)
	err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Fatalf("expected db.Error with op SET, got %v", err)
	}
}

func TestDeleteByPrefix_WalksCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "docsearch:resp:docs:*", "COUNT", "500")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisBlobString("17"),
				mock.RedisArray(mock.RedisBlobString("docsearch:resp:docs:a"), mock.RedisBlobString("docsearch:resp:docs:b")),
			))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("UNLINK", "docsearch:resp:docs:a", "docsearch:resp:docs:b")).
			Return(mock.Result(mock.RedisInt64(2))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "17", "MATCH", "docsearch:resp:docs:*", "COUNT", "500")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisBlobString("0"),
				mock.RedisArray(),
			))),
	)

	s := newStoreWithClient(c)
	n, err := s.DeleteByPrefix(context.Background(), "docsearch:resp:docs:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
}

func TestDeleteByPrefix_ScanError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.ErrorResult(errors.New("LOADING")))

	s := newStoreWithClient(c)
	_, err := s.DeleteByPrefix(context.Background(), "p:")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpScan {
		t.Fatalf("expected db.Error with op SCAN, got %v", err)
	}
}
