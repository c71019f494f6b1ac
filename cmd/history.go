package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revshare/config"
	"revshare/service"
)

const historyUsage = "usage: revshare history offering|investor|run <id>"

// History prints stored distributions for an offering, investor or single run
func History(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New(historyUsage)
	}
	kind, id := args[0], args[1]
	if kind != "offering" && kind != "investor" && kind != "run" {
		return fmt.Errorf("unknown history kind %q; %s", kind, historyUsage)
	}

	cfg := config.Get()
	ConfigureLogging(cfg)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	switch kind {
	case "offering":
		runs, err := a.history.ListOfferingDistributions(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %12s  %s\n", r.ID, r.DistributionDate.Format(time.DateOnly),
				r.TotalAmount.StringFixed(service.CentPlaces), r.Status)
		}
		fmt.Printf("%d runs\n", len(runs))

	case "investor":
		payouts, err := a.history.ListInvestorPayouts(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range payouts {
			fmt.Printf("%s  run=%s  %12s  %s\n", p.ID, p.DistributionRunID,
				p.Amount.StringFixed(service.CentPlaces), p.Status)
		}
		fmt.Printf("%d payouts\n", len(payouts))

	case "run":
		result, err := a.history.GetDistribution(ctx, id)
		if err != nil {
			return err
		}
		printResult(result)
	}

	return nil
}
