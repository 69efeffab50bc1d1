package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/recon/internal/model"
)

func TestCompute(t *testing.T) {
	records := []model.Record{
		{Classification: model.Incoming, GST: dec("10.00")},
		{Classification: model.Incoming, GST: dec("2.50")},
		{Classification: model.Outgoing, GST: dec("4.00")},
		{Classification: model.Internal, GST: dec("100.00")},
		{Classification: model.Unclassified, GST: dec("1.00")},
	}
	l := Compute(records)
	assert.Equal(t, "12.50", l.Collected.StringFixed(2))
	assert.Equal(t, "4.00", l.Paid.StringFixed(2))
	assert.Equal(t, "8.50", l.Net().StringFixed(2))
}

func TestCompute_Refund(t *testing.T) {
	l := Compute([]model.Record{{Classification: model.Outgoing, GST: dec("3")}})
	assert.True(t, l.Net().IsNegative())

	empty := Compute(nil)
	assert.True(t, empty.Net().IsZero())
}
