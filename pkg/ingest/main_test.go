package ingest

import (
	"os"
	"testing"

	"github.com/grantboard/ingest-worker/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
