package records_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linerecord-pipeline/internal/records"
)

func TestSummarize(t *testing.T) {
	s := parse(t, "a,2,x", "b,10,x", "c,30,x", "d,40,x")
	sum, err := records.Summarize(s, 1, records.ParseInt)
	require.NoError(t, err)

	assert.Equal(t, records.Summary{Count: 4, Sum: 82, Min: 2, Max: 40, Average: 20.5}, sum)
	assert.Equal(t, "IntSummaryStatistics{count=4, sum=82, min=2, average=20.500000, max=40}", sum.String())
}

func TestSummarizeEmptyAndErrors(t *testing.T) {
	sum, err := records.Summarize(parse(t), 1, records.ParseInt)
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.Contains(t, sum.String(), "min=2147483647")

	_, err = records.Summarize(parse(t, "a,x,y"), 1, records.ParseInt)
	assert.ErrorIs(t, err, records.ErrParse)

	_, err = records.Summarize(parse(t, sample...), 9, records.ParseInt)
	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)
}

func TestSummaryMerge(t *testing.T) {
	var a, b records.Summary
	a.Add(2)
	a.Add(10)
	b.Add(30)
	b.Add(40)
	a.Merge(b)
	assert.Equal(t, records.Summary{Count: 4, Sum: 82, Min: 2, Max: 40, Average: 20.5}, a)

	var empty records.Summary
	empty.Merge(b)
	assert.Equal(t, b, empty)
}

func TestOrderedMapJSONKeepsInsertionOrder(t *testing.T) {
	m := records.NewOrderedMap()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("z", 3)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":3,"a":2}`, string(out))

	var keys []string
	for k := range m.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"z", "a"}, keys)
}
