package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
)

func TestParseContinuationAndSystem(t *testing.T) {
	text := strings.Join([]string{
		"",
		"05/01/2026 09:15 - Ana: bom dia",
		"segunda linha",
		"",
		"05/01/2026 9:20 da tarde - Bruno adicionou Carla",
		"06/01/2026 10:00 - Carla: link https://example.com",
	}, "\r\n")

	msgs, err := ParseString(text)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "Ana", msgs[0].Sender)
	assert.Equal(t, "bom dia\nsegunda linha\n", msgs[0].Body)
	assert.Equal(t, []string{"05/01/2026 09:15 - Ana: bom dia", "segunda linha", ""}, msgs[0].Lines)
	assert.Equal(t, 2, msgs[0].LineNumber)
	assert.False(t, msgs[0].System)

	assert.True(t, msgs[1].System)
	assert.Empty(t, msgs[1].Sender)
	assert.Equal(t, "Bruno adicionou Carla", msgs[1].Body)
	assert.Equal(t, time.Date(2026, 1, 5, 21, 20, 0, 0, time.UTC), msgs[1].Timestamp)

	assert.Equal(t, "Carla", msgs[2].Sender)
}

func TestParseNoticeWithColon(t *testing.T) {
	text := strings.Join([]string{
		`05/01/2026 09:15 - Ana criou o grupo "IA: educação"`,
		`05/01/2026 09:16 - Bruno mudou o assunto de “Geral” para “IA: dúvidas”`,
		"05/01/2026 09:17 - Carla: resumo: ok",
		"05/01/2026 09:18 - +55 11 98888-7777: oi",
	}, "\n")

	msgs, err := ParseString(text)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	for _, m := range msgs[:2] {
		assert.True(t, m.System, m.Body)
		assert.Empty(t, m.Sender)
	}
	assert.Equal(t, `Ana criou o grupo "IA: educação"`, msgs[0].Body)

	assert.Equal(t, "Carla", msgs[2].Sender)
	assert.Equal(t, "resumo: ok", msgs[2].Body)
	assert.Equal(t, "+55 11 98888-7777", msgs[3].Sender)
}

func TestParseTimestampForms(t *testing.T) {
	cases := []struct {
		line string
		want time.Time
	}{
		{"05/01/2026 09:15 - A: x", time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)},
		{"05/01/2026, 09:15:42 - A: x", time.Date(2026, 1, 5, 9, 15, 42, 0, time.UTC)},
		{"5/1/26, 9:15 PM - A: x", time.Date(2026, 1, 5, 21, 15, 0, 0, time.UTC)},
		{"5/1/26, 12:05 AM - A: x", time.Date(2026, 1, 5, 0, 5, 0, 0, time.UTC)},
		{"5/1/26, 12:05 pm - A: x", time.Date(2026, 1, 5, 12, 5, 0, 0, time.UTC)},
		{"05/01/2026 12:30 da tarde - A: x", time.Date(2026, 1, 5, 12, 30, 0, 0, time.UTC)},
		{"05/01/2026 12:30 da madrugada - A: x", time.Date(2026, 1, 5, 0, 30, 0, 0, time.UTC)},
		{"05/01/2026 8:00 da noite - A: x", time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)},
		{"05/01/2026 7:45 da manhã - A: x", time.Date(2026, 1, 5, 7, 45, 0, 0, time.UTC)},
		{"[05/01/2026, 09:15:33] A: x", time.Date(2026, 1, 5, 9, 15, 33, 0, time.UTC)},
		{"\u200e[05/01/26, 9:15:33 PM] A: x", time.Date(2026, 1, 5, 21, 15, 33, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			msgs, err := ParseString(tc.line)
			require.NoError(t, err)
			require.Len(t, msgs, 1)
			assert.Equal(t, tc.want, msgs[0].Timestamp)
			assert.Equal(t, "A", msgs[0].Sender)
			assert.Equal(t, "x", msgs[0].Body)
		})
	}
}

func TestParseInvalidDateIsContinuation(t *testing.T) {
	msgs, err := ParseString("05/01/2026 09:15 - A: x\n31/02/2026 09:15 - B: y")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "x\n31/02/2026 09:15 - B: y", msgs[0].Body)
}

func TestParseErrors(t *testing.T) {
	for name, text := range map[string]string{
		"empty":       "",
		"blank only":  "\n\n  \n",
		"garbage":     "hello there\n05/01/2026 09:15 - A: x",
		"binary-ish":  "PK\x03\x04",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(text)
			require.Error(t, err)
			assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
		})
	}
}

func TestParsePreservesOrder(t *testing.T) {
	// Source order is trusted even when timestamps go backwards.
	msgs, err := ParseString("06/01/2026 10:00 - A: one\n05/01/2026 10:00 - B: two")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)
}
