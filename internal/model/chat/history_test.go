package chat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/speak-coach/backend/internal/model/chat"
)

func TestHistoryPreservesOrderAndCount(t *testing.T) {
	h := chat.NewHistory(0)
	for i := 0; i < 25; i++ {
		h.Append(chat.NewTurn(chat.SpeakerYou, fmt.Sprintf("q%d", i)))
	}

	all := h.All()
	require.Len(t, all, 25)
	for i, turn := range all {
		assert.Equal(t, fmt.Sprintf("q%d", i), turn.Message)
	}
}

func TestHistoryGerundScenario(t *testing.T) {
	h := chat.NewHistory(0)
	h.Append(
		chat.Turn{Speaker: chat.SpeakerYou, Message: "What is a gerund?"},
		chat.Turn{Speaker: chat.SpeakerAssistant, Message: "A gerund is..."},
	)

	first := h.All()
	require.Equal(t, []chat.Turn{
		{Speaker: chat.SpeakerYou, Message: "What is a gerund?"},
		{Speaker: chat.SpeakerAssistant, Message: "A gerund is..."},
	}, first)

	h.Append(chat.Turn{Speaker: chat.SpeakerYou, Message: "Give an example"})

	all := h.All()
	require.Len(t, all, 3)
	assert.Equal(t, first, all[:2])
	assert.Equal(t, "Give an example", all[2].Message)
}

func TestHistoryAllReturnsCopy(t *testing.T) {
	h := chat.NewHistory(0)
	h.Append(chat.Turn{Speaker: chat.SpeakerYou, Message: "original"})

	all := h.All()
	all[0].Message = "changed"

	assert.Equal(t, "original", h.All()[0].Message)
}

func TestHistoryEvictsWholePairs(t *testing.T) {
	h := chat.NewHistory(4)
	for i := 0; i < 3; i++ {
		h.Append(
			chat.Turn{Speaker: chat.SpeakerYou, Message: fmt.Sprintf("q%d", i)},
			chat.Turn{Speaker: chat.SpeakerAssistant, Message: fmt.Sprintf("a%d", i)},
		)
	}

	all := h.All()
	require.Len(t, all, 4)
	assert.Equal(t, "q1", all[0].Message)
	assert.Equal(t, chat.SpeakerYou, all[0].Speaker)
	assert.Equal(t, "a2", all[3].Message)
}

func TestHistoryOddLimitKeepsPairs(t *testing.T) {
	h := chat.NewHistory(3)
	for i := 0; i < 3; i++ {
		h.Append(
			chat.Turn{Speaker: chat.SpeakerYou, Message: fmt.Sprintf("q%d", i)},
			chat.Turn{Speaker: chat.SpeakerAssistant, Message: fmt.Sprintf("a%d", i)},
		)
	}

	all := h.All()
	require.Len(t, all, 4)
	assert.Equal(t, chat.SpeakerYou, all[0].Speaker)
}

func TestHistoryConcurrentPairsStayAdjacent(t *testing.T) {
	h := chat.NewHistory(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Append(
				chat.Turn{Speaker: chat.SpeakerYou, Message: fmt.Sprintf("q%d", i)},
				chat.Turn{Speaker: chat.SpeakerAssistant, Message: fmt.Sprintf("a%d", i)},
			)
		}(i)
	}
	wg.Wait()

	all := h.All()
	require.Len(t, all, 40)
	for i := 0; i < len(all); i += 2 {
		assert.Equal(t, chat.SpeakerYou, all[i].Speaker)
		assert.Equal(t, "a"+all[i].Message[1:], all[i+1].Message)
	}
}
