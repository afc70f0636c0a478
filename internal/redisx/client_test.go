package redisx_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/meistrid/go-catalog-sync/internal/redisx"
)

func TestNewAppliesTimeout(t *testing.T) {
	c := qt.New(t)

	rdb := redisx.New("localhost:6379")
	defer rdb.Close()

	opt := rdb.Options()
	c.Assert(opt.ReadTimeout, qt.Equals, 2*time.Second)
	c.Assert(opt.WriteTimeout, qt.Equals, 2*time.Second)
}
