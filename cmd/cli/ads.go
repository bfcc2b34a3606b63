package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/community-console/internal/advert"
	"github.com/kurihiro0119/community-console/internal/batch"
	"github.com/kurihiro0119/community-console/internal/domain"
	"github.com/kurihiro0119/community-console/pkg/client"
)

var (
	adTitle        string
	adDescription  string
	adType         string
	adDuration     int
	adMediaURL     string
	adCommunityIDs []int64
	adAgreeTerms   bool
	adDelay        time.Duration
)

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Price and submit advertisements (investor)",
}

var adsQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price an advertisement over the selected communities",
	Args:  cobra.NoArgs,
	RunE:  runAdsQuote,
}

var adsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit an advertisement to every selected community",
	Long: `Submit one advertisement per selected community, one after the other.

Each community shows waiting, uploading, success or failed while the run
progresses. A failed community does not stop the others. The run is stored
and can be inspected later with "batches show".`,
	Args: cobra.NoArgs,
	RunE: runAdsCreate,
}

var adsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the advertisements of the signed-in investor",
	Args:  cobra.NoArgs,
	RunE:  runAdsList,
}

func init() {
	adsQuoteCmd.Flags().IntVar(&adDuration, "duration", 1, "upload duration in days (1-30)")
	adsQuoteCmd.Flags().Int64SliceVar(&adCommunityIDs, "communities", nil, "community IDs, comma separated")
	_ = adsQuoteCmd.MarkFlagRequired("communities")

	adsCreateCmd.Flags().StringVar(&adTitle, "title", "", "advertisement title")
	adsCreateCmd.Flags().StringVar(&adDescription, "description", "", "advertisement description")
	adsCreateCmd.Flags().StringVar(&adType, "type", string(domain.AdTypeNonProfit), "advertisement type (\"Non-Profit Ad\" or \"Profit Ad\")")
	adsCreateCmd.Flags().IntVar(&adDuration, "duration", 1, "upload duration in days (1-30)")
	adsCreateCmd.Flags().StringVar(&adMediaURL, "media-url", "", "URL of the uploaded media")
	adsCreateCmd.Flags().Int64SliceVar(&adCommunityIDs, "communities", nil, "community IDs, comma separated")
	adsCreateCmd.Flags().BoolVar(&adAgreeTerms, "agree-terms", false, "agree to the terms and conditions")
	adsCreateCmd.Flags().DurationVar(&adDelay, "delay", 0, "pause before each submission (default from SUBMIT_DELAY)")
	_ = adsCreateCmd.MarkFlagRequired("communities")

	adsCmd.AddCommand(adsQuoteCmd)
	adsCmd.AddCommand(adsCreateCmd)
	adsCmd.AddCommand(adsListCmd)
}

func runAdsQuote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	c, err := getClient(cfg, log, client.RoleInvestor)
	if err != nil {
		return err
	}

	// Quoting never submits, so the tracker only needs a logger
	tracker, err := batch.NewTracker(batch.TrackerConfig{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}
	quote, err := advert.NewCampaign(c, tracker, log).Quote(context.Background(), adDuration, adCommunityIDs)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(quote)
	}
	printQuote(quote)
	return nil
}

func runAdsCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	c, err := getClient(cfg, log, client.RoleInvestor)
	if err != nil {
		return err
	}
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	delay := cfg.SubmitDelay
	if cmd.Flags().Changed("delay") {
		delay = adDelay
	}

	progress := newProgressPrinter()
	tcfg := batch.TrackerConfig{
		Logger:   log,
		Delay:    delay,
		Recorder: store,
	}
	if !outputJSON {
		tcfg.Observer = progress.observe
	}
	tracker, err := batch.NewTracker(tcfg)
	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}
	campaign := advert.NewCampaign(c, tracker, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	draft := advert.Draft{
		Title:          adTitle,
		Description:    adDescription,
		Type:           domain.AdType(adType),
		UploadDuration: adDuration,
		MediaURL:       adMediaURL,
		AgreeTerms:     adAgreeTerms,
	}
	if err := draft.Validate(); err != nil {
		return err
	}

	quote, err := campaign.Quote(ctx, adDuration, adCommunityIDs)
	if err != nil {
		return err
	}
	if !outputJSON {
		printQuote(quote)
		fmt.Println()
	}

	run, err := campaign.SubmitQuote(ctx, draft, quote)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(run)
	}
	fmt.Println()
	printBatchRun(run)
	return nil
}

func runAdsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := getClient(cfg, newLogger(cfg), client.RoleInvestor)
	if err != nil {
		return err
	}

	ads, err := c.GetInvestorAds(context.Background())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(ads)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Type", "Days", "Fee", "Status", "Created"})
	for _, ad := range ads {
		table.Append([]string{
			fmt.Sprintf("%d", ad.AdvertisementID),
			ad.Title,
			ad.Type,
			fmt.Sprintf("%d", ad.UploadDuration),
			fmt.Sprintf("%.2f", ad.Fee),
			ad.Status,
			ad.CreatedAt,
		})
	}
	table.Render()
	return nil
}

func printQuote(q advert.Quote) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Community", "Members", "Basic Fee", "Fee"})
	for _, line := range q.Lines {
		table.Append([]string{
			line.Name,
			fmt.Sprintf("%d", line.TotalMembers),
			fmt.Sprintf("%.2f", line.BasicFee),
			fmt.Sprintf("%.2f", line.Fee),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d days", q.DurationDays), fmt.Sprintf("%.2f", q.BasicFee), fmt.Sprintf("%.2f", q.TotalFee)})
	table.Render()

	status := "sufficient"
	if !q.Sufficient {
		status = "insufficient"
	}
	fmt.Printf("Wallet balance: %.2f (%s)\n", q.Balance, status)
}

// statusLabel is the progress label shown per target
func statusLabel(s domain.TargetStatus) string {
	switch s {
	case domain.TargetInProgress:
		return "uploading"
	case domain.TargetSucceeded:
		return "success"
	case domain.TargetFailed:
		return "failed"
	default:
		return "waiting"
	}
}

// progressPrinter prints a line whenever a target changes status
type progressPrinter struct {
	last map[int64]domain.TargetStatus
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{last: make(map[int64]domain.TargetStatus)}
}

func (p *progressPrinter) observe(run *domain.BatchRun) {
	for i, t := range run.Targets {
		if p.last[t.TargetID] == t.Status {
			continue
		}
		p.last[t.TargetID] = t.Status
		if t.Status == domain.TargetWaiting {
			continue
		}
		line := fmt.Sprintf("[%d/%d] %-40s %s", i+1, len(run.Targets), t.DisplayName, statusLabel(t.Status))
		if t.Message != "" {
			line += ": " + t.Message
		}
		fmt.Println(line)
	}
}
