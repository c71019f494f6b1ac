package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"revshare/events"
	"revshare/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunID = "3f2a9c1e-8b7d-4c2f-9e1a-0b5c6d7e8f90"

func sampleRun() *models.DistributionRun {
	return &models.DistributionRun{
		ID:               testRunID,
		OfferingID:       "offering-1",
		TotalAmount:      decimal.RequireFromString("1500.00"),
		DistributionDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:           models.DistributionStatusPending,
		CreatedAt:        time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildDistributionCompletedEmbed(t *testing.T) {
	embed := buildDistributionCompletedEmbed(events.DistributionCompletedEvent{
		DistributionRunID: testRunID,
		OfferingID:        "offering-1",
		TotalAmount:       decimal.RequireFromString("12345.6"),
		PayoutCount:       3,
		DistributionDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		ReportedBy:        "issuer-7",
	})

	assert.Equal(t, "**12,345.60** distributed to **3** investors", embed.Description)
	assert.Equal(t, colorCompleted, embed.Color)
	assert.Contains(t, embed.Footer.Text, testRunID)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "offering-1", embed.Fields[0].Value)
	assert.Equal(t, "<t:1711929600:D>", embed.Fields[1].Value)
	assert.Equal(t, "issuer-7", embed.Fields[2].Value)
}

func TestBuildDistributionCompletedEmbed_WithoutReporter(t *testing.T) {
	embed := buildDistributionCompletedEmbed(events.DistributionCompletedEvent{
		DistributionRunID: testRunID,
		TotalAmount:       decimal.RequireFromString("1"),
	})

	assert.Len(t, embed.Fields, 2)
}

func TestBuildRunDetailEmbed(t *testing.T) {
	result := &models.DistributionResult{
		Run: sampleRun(),
		Payouts: []*models.Payout{
			{InvestorID: "alice", Amount: decimal.RequireFromString("1050.00")},
			{InvestorID: "bob", Amount: decimal.RequireFromString("450.00")},
		},
	}

	embed := buildRunDetailEmbed(result)

	assert.Equal(t, "Distribution 3f2a9c1e", embed.Title)
	assert.Equal(t, "**Total: 1,500.00** across 2 payouts", embed.Description)
	payouts := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "Payouts", payouts.Name)
	assert.Equal(t, "`alice` 1,050.00\n`bob` 450.00", payouts.Value)
}

func TestBuildOfferingRunsEmbed(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		embed := buildOfferingRunsEmbed("offering-1", nil)
		assert.Equal(t, "No distributions yet.", embed.Description)
		assert.Equal(t, colorEmpty, embed.Color)
		assert.Empty(t, embed.Fields)
	})

	t.Run("sums totals", func(t *testing.T) {
		second := sampleRun()
		second.TotalAmount = decimal.RequireFromString("0.01")

		embed := buildOfferingRunsEmbed("offering-1", []*models.DistributionRun{sampleRun(), second})

		assert.Equal(t, "**2 runs**, 1,500.01 distributed in total", embed.Description)
		require.Len(t, embed.Fields, 1)
		assert.Equal(t, 2, strings.Count(embed.Fields[0].Value, "3f2a9c1e"))
	})
}

func TestBuildInvestorPayoutsEmbed_CapsListedItems(t *testing.T) {
	payouts := make([]*models.Payout, 20)
	for i := range payouts {
		payouts[i] = &models.Payout{
			DistributionRunID: fmt.Sprintf("run%02d-0000", i),
			Amount:            decimal.RequireFromString("1.25"),
			Status:            models.DistributionStatusPending,
		}
	}

	embed := buildInvestorPayoutsEmbed("alice", payouts)

	assert.Equal(t, "**20 payouts**, 25.00 received in total", embed.Description)
	value := embed.Fields[0].Value
	assert.Contains(t, value, "run14")
	assert.NotContains(t, value, "run15")
	assert.True(t, strings.HasSuffix(value, "*...and 5 more*"))
}

func TestJoinLimited_TruncatesLongValues(t *testing.T) {
	lines := []string{strings.Repeat("x", 2000)}

	value := joinLimited(lines, "")

	assert.Len(t, value, maxFieldLength)
	assert.True(t, strings.HasSuffix(value, "..."))
	assert.Equal(t, "*none*", joinLimited(nil, "*none*"))
}
