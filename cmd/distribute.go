package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"revshare/config"
	"revshare/models"
	"revshare/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const distributeUsage = "usage: revshare distribute <offering> <start> <end> <amount> [reported-by]"

// Distribute submits one revenue report from the command line and prints the payouts
func Distribute(ctx context.Context, args []string) error {
	req, err := parseDistributeArgs(args)
	if err != nil {
		return err
	}

	cfg := config.Get()
	ConfigureLogging(cfg)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	result, err := a.reports.Submit(ctx, req)
	if err != nil {
		if service.IsValidationError(err) {
			return fmt.Errorf("revenue report rejected: %w", err)
		}
		return fmt.Errorf("failed to distribute revenue: %w", err)
	}

	printResult(result)
	return nil
}

func parseDistributeArgs(args []string) (models.RevenueReportRequest, error) {
	if len(args) < 4 || len(args) > 5 {
		return models.RevenueReportRequest{}, errors.New(distributeUsage)
	}

	start, err := parseTime(args[1])
	if err != nil {
		return models.RevenueReportRequest{}, fmt.Errorf("invalid period start: %w", err)
	}
	end, err := parseTime(args[2])
	if err != nil {
		return models.RevenueReportRequest{}, fmt.Errorf("invalid period end: %w", err)
	}
	amount, err := decimal.NewFromString(args[3])
	if err != nil {
		return models.RevenueReportRequest{}, fmt.Errorf("invalid amount %q: %w", args[3], err)
	}

	req := models.RevenueReportRequest{
		OfferingID: args[0],
		Period:     models.Period{Start: start, End: end},
		Amount:     amount,
		ReportedBy: "cli",
	}
	if len(args) == 5 {
		req.ReportedBy = args[4]
	}
	return req, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates, both normalized to UTC
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", value)
	}
	return t, nil
}

func printResult(result *models.DistributionResult) {
	log.WithFields(log.Fields{
		"distributionRunId": result.Run.ID,
		"offeringId":        result.Run.OfferingID,
		"totalAmount":       result.Run.TotalAmount.StringFixed(service.CentPlaces),
	}).Info("Distribution complete")

	fmt.Printf("Run %s  offering=%s  total=%s  date=%s  status=%s\n",
		result.Run.ID, result.Run.OfferingID, result.Run.TotalAmount.StringFixed(service.CentPlaces),
		result.Run.DistributionDate.Format(time.DateOnly), result.Run.Status)
	for _, p := range result.Payouts {
		fmt.Printf("  %-36s %s\n", p.InvestorID, p.Amount.StringFixed(service.CentPlaces))
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("  %-36s %s\n", "total", result.PayoutTotal().StringFixed(service.CentPlaces))
}
