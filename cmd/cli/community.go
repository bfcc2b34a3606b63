package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/community-console/internal/allocator"
	"github.com/kurihiro0119/community-console/internal/community"
	"github.com/kurihiro0119/community-console/internal/domain"
	"github.com/kurihiro0119/community-console/pkg/client"
)

var (
	communityName        string
	communityLocation    string
	communityArea        string
	maxParticipation     string
	memberShare          string
	managementShare      string
	rewardCommunityShare string
	rewardTaskShare      string
	adUserShare          string
	adCommunityShare     string
	agreeTerms           bool
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Manage communities (admin)",
}

var communityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed communities",
	Args:  cobra.NoArgs,
	RunE:  runCommunityList,
}

var communityLocationsCmd = &cobra.Command{
	Use:   "locations [location]",
	Short: "Show locations and their free areas",
	Long:  `Without an argument, list the location catalog. With a location, show which of its areas are still free.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommunityLocations,
}

var communityCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a community",
	Long: `Create a community in a free area of a location.

Shares are linked pairs: setting the member share derives the management share
as 100 minus the value, and the same holds for the reward shares.`,
	Args: cobra.NoArgs,
	RunE: runCommunityCreate,
}

var communityUpdateCmd = &cobra.Command{
	Use:   "update [communityId]",
	Short: "Update max participation, member share and reward share",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommunityUpdate,
}

var communityAdDistributionCmd = &cobra.Command{
	Use:   "ad-distribution [communityId]",
	Short: "Update the user / community split of advertisement revenue",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommunityAdDistribution,
}

func init() {
	communityCreateCmd.Flags().StringVar(&communityName, "name", "", "community name")
	communityCreateCmd.Flags().StringVar(&communityLocation, "location", "", "location name")
	communityCreateCmd.Flags().StringVar(&communityArea, "area", "", "area of the location (\"Area A\" or just A)")
	communityCreateCmd.Flags().StringVar(&maxParticipation, "max-participation", "", "max participation (50-300, step 10)")
	communityCreateCmd.Flags().StringVar(&memberShare, "member-share", "", "member share percentage")
	communityCreateCmd.Flags().StringVar(&managementShare, "management-share", "", "management share percentage")
	communityCreateCmd.Flags().StringVar(&rewardCommunityShare, "reward-community-share", "", "community share of rewards")
	communityCreateCmd.Flags().StringVar(&rewardTaskShare, "reward-task-share", "", "task participant share of rewards")
	communityCreateCmd.Flags().BoolVar(&agreeTerms, "agree-terms", false, "agree to the terms and conditions")
	_ = communityCreateCmd.MarkFlagRequired("name")
	_ = communityCreateCmd.MarkFlagRequired("location")

	communityUpdateCmd.Flags().StringVar(&maxParticipation, "max-participation", "", "max participation")
	communityUpdateCmd.Flags().StringVar(&memberShare, "member-share", "", "member share percentage")
	communityUpdateCmd.Flags().StringVar(&managementShare, "management-share", "", "management share percentage")
	communityUpdateCmd.Flags().StringVar(&rewardCommunityShare, "reward-community-share", "", "community share of rewards")
	communityUpdateCmd.Flags().StringVar(&rewardTaskShare, "reward-task-share", "", "task participant share of rewards")

	communityAdDistributionCmd.Flags().StringVar(&adUserShare, "user-share", "", "user share of advertisement revenue")
	communityAdDistributionCmd.Flags().StringVar(&adCommunityShare, "community-share", "", "community share of advertisement revenue")

	communityCmd.AddCommand(communityListCmd)
	communityCmd.AddCommand(communityLocationsCmd)
	communityCmd.AddCommand(communityCreateCmd)
	communityCmd.AddCommand(communityUpdateCmd)
	communityCmd.AddCommand(communityAdDistributionCmd)
}

func newCommunityService() (*community.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg)
	c, err := getClient(cfg, log, client.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return community.NewService(c, log), nil
}

func runCommunityList(cmd *cobra.Command, args []string) error {
	svc, err := newCommunityService()
	if err != nil {
		return err
	}

	communities, err := svc.List(context.Background())
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(communities)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Members", "Member/Mgmt", "Reward Comm/Task", "Ads User/Comm"})
	for _, c := range communities {
		reward, ads := "-", "-"
		if c.RewardDistribution != nil {
			reward = formatSplit(c.RewardDistribution.CommunityPercentage, c.RewardDistribution.TaskParticipantPercentage)
		}
		if c.AdvertisementDistribution != nil {
			ads = formatSplit(c.AdvertisementDistribution.UserPercentage, c.AdvertisementDistribution.CommunityPercentage)
		}
		table.Append([]string{
			fmt.Sprintf("%d", c.CommunityID),
			c.Name,
			fmt.Sprintf("%d/%d", c.TotalMembers, c.MaxParticipation),
			formatSplit(c.MemberSharePercentage, c.ManagementSharePercentage),
			reward,
			ads,
		})
	}
	table.Render()

	return nil
}

func runCommunityLocations(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if outputJSON {
			return printJSON(community.Locations)
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Location", "Areas"})
		for _, l := range community.Locations {
			table.Append([]string{l.Name, fmt.Sprintf("%d", len(l.Areas))})
		}
		table.Render()
		return nil
	}

	svc, err := newCommunityService()
	if err != nil {
		return err
	}
	w := community.NewCreateWizard()
	if err := svc.SelectLocation(context.Background(), w, args[0]); err != nil {
		return err
	}
	loc, _ := w.Location()
	free := make(map[string]bool)
	for _, a := range w.AvailableAreas() {
		free[a.Name] = true
	}

	if outputJSON {
		return printJSON(map[string]any{"location": loc, "available": free})
	}

	fmt.Printf("\nLocation: %s\n\n", loc.Name)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Area", "X", "Y", "Width", "Height", "Status"})
	for _, a := range loc.Areas {
		status := "taken"
		if free[a.Name] {
			status = "free"
		}
		table.Append([]string{a.Name, formatNumber(a.X), formatNumber(a.Y), formatNumber(a.Width), formatNumber(a.Height), status})
	}
	table.Render()
	return nil
}

func runCommunityCreate(cmd *cobra.Command, args []string) error {
	svc, err := newCommunityService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	w := community.NewCreateWizard()
	w.SetName(communityName)
	if err := svc.SelectLocation(ctx, w, communityLocation); err != nil {
		return err
	}
	if communityArea == "" {
		names := []string{}
		for _, a := range w.AvailableAreas() {
			names = append(names, a.Name)
		}
		return fmt.Errorf("--area is required; free areas at %s: %v", communityLocation, names)
	}
	if err := w.SelectArea(communityArea); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	if cmd.Flags().Changed("max-participation") {
		w.Participation.SetValue(maxParticipation)
	}
	if err := applyShare(cmd, w.MemberShare, "member-share", memberShare, "management-share", managementShare); err != nil {
		return err
	}
	if err := applyShare(cmd, w.RewardShare, "reward-community-share", rewardCommunityShare, "reward-task-share", rewardTaskShare); err != nil {
		return err
	}
	if err := w.ShowSummary(); err != nil {
		return err
	}

	w.AgreeToTerms(agreeTerms)
	req, err := svc.Create(ctx, w)
	if errors.Is(err, community.ErrTermsNotAccepted) {
		printCreateSummary(w)
		return fmt.Errorf("%w (pass --agree-terms to create)", err)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(req)
	}
	printCreateSummary(w)
	fmt.Println("Community created successfully")
	return nil
}

func printCreateSummary(w *community.CreateWizard) {
	loc, _ := w.Location()
	member := w.MemberShare.Pair()
	reward := w.RewardShare.Pair()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Name", w.Name()})
	table.Append([]string{"Location", loc.Name})
	table.Append([]string{"Area", w.Area()})
	table.Append([]string{"Max Participation", fmt.Sprintf("%d", w.Participation.Value())})
	table.Append([]string{"Member / Management", formatSplit(member.Primary, member.Secondary)})
	table.Append([]string{"Reward Community / Task", formatSplit(reward.Primary, reward.Secondary)})
	table.Render()
}

func runCommunityUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseCommunityID(args[0])
	if err != nil {
		return err
	}
	svc, err := newCommunityService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	form, _, err := svc.LoadForms(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-participation") {
		if err := form.SetMaxParticipation(maxParticipation); err != nil {
			return fmt.Errorf("max participation: %w", err)
		}
	}
	for _, edit := range []struct {
		flag string
		raw  string
		set  func(allocator.Side, string) (allocator.Pair, error)
		side allocator.Side
	}{
		{"member-share", memberShare, form.SetMemberShare, allocator.Primary},
		{"management-share", managementShare, form.SetMemberShare, allocator.Secondary},
		{"reward-community-share", rewardCommunityShare, form.SetRewardShare, allocator.Primary},
		{"reward-task-share", rewardTaskShare, form.SetRewardShare, allocator.Secondary},
	} {
		if !cmd.Flags().Changed(edit.flag) {
			continue
		}
		if _, err := edit.set(edit.side, edit.raw); err != nil {
			return fmt.Errorf("%s: %w", edit.flag, err)
		}
	}

	if err := svc.SaveSettings(ctx, form); err != nil {
		return err
	}

	v := form.Values()
	if outputJSON {
		return printJSON(v)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Max Participation", fmt.Sprintf("%d", v.MaxParticipation)})
	table.Append([]string{"Member / Management", formatSplit(v.MemberShare.Primary, v.MemberShare.Secondary)})
	table.Append([]string{"Reward Community / Task", formatSplit(v.RewardShare.Primary, v.RewardShare.Secondary)})
	table.Render()
	fmt.Println("Community updated successfully")
	return nil
}

func runCommunityAdDistribution(cmd *cobra.Command, args []string) error {
	id, err := parseCommunityID(args[0])
	if err != nil {
		return err
	}
	svc, err := newCommunityService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	_, form, err := svc.LoadForms(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("user-share") {
		if _, err := form.SetShare(allocator.Primary, adUserShare); err != nil {
			return fmt.Errorf("user-share: %w", err)
		}
	}
	if cmd.Flags().Changed("community-share") {
		if _, err := form.SetShare(allocator.Secondary, adCommunityShare); err != nil {
			return fmt.Errorf("community-share: %w", err)
		}
	}

	if err := svc.SaveAdDistribution(ctx, form); err != nil {
		return err
	}

	p := form.Values()
	if outputJSON {
		return printJSON(domain.AdvertisementDistribution{UserPercentage: p.Primary, CommunityPercentage: p.Secondary})
	}
	fmt.Printf("Advertisement distribution updated: user %s / community %s\n", formatNumber(p.Primary), formatNumber(p.Secondary))
	return nil
}

// applyShare applies the primary flag, then the secondary flag, to a linked pair
func applyShare(cmd *cobra.Command, pair *allocator.LinkedPair, primaryFlag, primaryRaw, secondaryFlag, secondaryRaw string) error {
	if cmd.Flags().Changed(primaryFlag) {
		if _, err := pair.SetValue(allocator.Primary, primaryRaw); err != nil {
			return fmt.Errorf("%s: %w", primaryFlag, err)
		}
	}
	if cmd.Flags().Changed(secondaryFlag) {
		if _, err := pair.SetValue(allocator.Secondary, secondaryRaw); err != nil {
			return fmt.Errorf("%s: %w", secondaryFlag, err)
		}
	}
	return nil
}

func parseCommunityID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid community id %q", raw)
	}
	return id, nil
}

func formatSplit(a, b float64) string {
	return formatNumber(a) + "/" + formatNumber(b)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
