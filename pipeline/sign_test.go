package pipeline_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/odontolegal/odontolegal-api/pipeline"
)

func TestAssinaturaToken(t *testing.T) {
	when := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)

	token := pipeline.AssinaturaToken("perito-1", "laudo-1", when)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), token)

	// same inputs, same token
	assert.Equal(t, token, pipeline.AssinaturaToken("perito-1", "laudo-1", when))

	// any input change yields a different token
	assert.NotEqual(t, token, pipeline.AssinaturaToken("perito-2", "laudo-1", when))
	assert.NotEqual(t, token, pipeline.AssinaturaToken("perito-1", "laudo-2", when))
	assert.NotEqual(t, token, pipeline.AssinaturaToken("perito-1", "laudo-1", when.Add(time.Nanosecond)))
}

func TestAssinaturaTokenTimezoneInsensitive(t *testing.T) {
	utc := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	sp := utc.In(time.FixedZone("America/Sao_Paulo", -3*60*60))

	assert.Equal(t,
		pipeline.AssinaturaToken("p", "d", utc),
		pipeline.AssinaturaToken("p", "d", sp),
	)
}
