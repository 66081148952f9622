package incrementer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/gridwatch/pkg/batch/core/domain/model"
)

func TestTimestampIncrementer_GetNext(t *testing.T) {
	inc := NewTimestampIncrementer("")
	inc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	params := model.NewJobParameters()
	params.Put("source", "gridwatch.csv")
	next := inc.GetNext(params)

	ts, ok := next.GetString(DefaultTimestampParameter)
	assert.True(t, ok)
	assert.Equal(t, "1700000000123", ts)
	src, _ := next.GetString("source")
	assert.Equal(t, "gridwatch.csv", src)

	_, ok = params.GetString(DefaultTimestampParameter)
	assert.False(t, ok, "input parameters are not modified")
	assert.Equal(t, "TimestampIncrementer[name=run.timestamp]", inc.String())
}

func TestTimestampIncrementer_ReplacesPrevious(t *testing.T) {
	inc := NewTimestampIncrementer("stamp")
	inc.now = func() time.Time { return time.UnixMilli(2) }

	params := model.NewJobParameters()
	params.Put("stamp", "1")
	next := inc.GetNext(params)

	ts, _ := next.GetString("stamp")
	assert.Equal(t, "2", ts)
}
