package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/homescout/internal/logger"
	"github.com/dtroode/homescout/internal/storage/memory"
)

type closeFailingStore struct {
	*memory.Store
}

func (closeFailingStore) Close() error {
	return errors.New("database is locked")
}

func TestCloseStore_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, 0, "text")

	closeStore(closeFailingStore{memory.New()}, log)
	assert.Contains(t, buf.String(), "failed to close storage")
	assert.Contains(t, buf.String(), "database is locked")

	buf.Reset()
	closeStore(memory.New(), log)
	assert.Empty(t, buf.String())
}
