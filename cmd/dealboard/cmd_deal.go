package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"deal-board/internal/domain"
	"deal-board/internal/dto"
	"deal-board/internal/response"
	"deal-board/internal/service"
)

// draftFlags are the deal form fields shared by create and edit
type draftFlags struct {
	title          string
	description    string
	value          string
	stage          string
	priority       string
	closeDate      string
	dealType       string
	leadSource     string
	nextStep       string
	probability    string
	campaignSource string

	customerID string
	firstName  string
	lastName   string
	email      string
	phone      string
	company    string
}

func (f *draftFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.title, "title", "", "Deal title")
	flags.StringVar(&f.description, "description", "", "Deal description")
	flags.StringVar(&f.value, "value", "", "Deal value, e.g. 1250.50")
	flags.StringVar(&f.stage, "stage", "", "Stage, e.g. NEW or \"closed won\"")
	flags.StringVar(&f.priority, "priority", "", "Priority: LOW, MEDIUM or HIGH")
	flags.StringVar(&f.closeDate, "close-date", "", "Expected close date (YYYY-MM-DD)")
	flags.StringVar(&f.dealType, "type", "", "Deal type")
	flags.StringVar(&f.leadSource, "lead-source", "", "Lead source")
	flags.StringVar(&f.nextStep, "next-step", "", "Next step")
	flags.StringVar(&f.probability, "probability", "", "Win probability percentage")
	flags.StringVar(&f.campaignSource, "campaign-source", "", "Campaign source")

	flags.StringVar(&f.customerID, "customer-id", "", "Link an existing customer")
	flags.StringVar(&f.firstName, "customer-first-name", "", "Create a new customer with this first name")
	flags.StringVar(&f.lastName, "customer-last-name", "", "New customer last name")
	flags.StringVar(&f.email, "customer-email", "", "New customer email")
	flags.StringVar(&f.phone, "customer-phone", "", "New customer phone")
	flags.StringVar(&f.company, "customer-company", "", "New customer company")
}

var newCustomerFlags = []string{
	"customer-first-name", "customer-last-name", "customer-email", "customer-phone", "customer-company",
}

// patch turns the flags that were set on the command line into a draft patch.
// Unset flags leave the draft untouched.
func (f *draftFlags) patch(flags *pflag.FlagSet) (dto.DealDraftPatch, error) {
	var p dto.DealDraftPatch

	str := func(name string, v string) *string {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}

	p.Title = str("title", f.title)
	p.Description = str("description", f.description)
	p.Value = str("value", f.value)
	p.ExpectedCloseDate = str("close-date", f.closeDate)
	p.Type = str("type", f.dealType)
	p.LeadSource = str("lead-source", f.leadSource)
	p.NextStep = str("next-step", f.nextStep)
	p.Probability = str("probability", f.probability)
	p.CampaignSource = str("campaign-source", f.campaignSource)

	if flags.Changed("stage") {
		stage := domain.ParseStage(f.stage)
		p.Stage = &stage
	}
	if flags.Changed("priority") {
		priority := domain.Priority(strings.ToUpper(strings.TrimSpace(f.priority)))
		p.Priority = &priority
	}

	newCustomer := false
	for _, name := range newCustomerFlags {
		if flags.Changed(name) {
			newCustomer = true
			break
		}
	}

	switch {
	case newCustomer && flags.Changed("customer-id"):
		return dto.DealDraftPatch{}, response.NewValidationError(
			"Use either --customer-id or the --customer-* flags", "")
	case newCustomer:
		mode := dto.CustomerModeCreateNew
		p.CustomerMode = &mode
		p.NewCustomer = &dto.CustomerDraft{
			FirstName: f.firstName,
			LastName:  f.lastName,
			Email:     f.email,
			Phone:     f.phone,
			Company:   f.company,
		}
	case flags.Changed("customer-id"):
		mode := dto.CustomerModeLinkExisting
		p.CustomerMode = &mode
		p.CustomerID = &f.customerID
	}

	return p, nil
}

func newDealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Create, edit, show or delete a deal",
	}
	cmd.AddCommand(
		newDealCreateCmd(a),
		newDealEditCmd(a),
		newDealShowCmd(a),
		newDealDeleteCmd(a),
	)
	return cmd
}

func newDealCreateCmd(a *app) *cobra.Command {
	flags := &draftFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deal, optionally with a new customer",
		Example: `  dealboard deal create --title "Q3 renewal" --value 3500 --customer-id c1
  dealboard deal create --title Pilot --stage proposal \
    --customer-first-name Ada --customer-last-name Lovelace --customer-email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}

			controller := a.newController(nil)
			if err := controller.OpenCreate(); err != nil {
				return err
			}
			return submit(cmd, controller, patch)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newDealEditCmd(a *app) *cobra.Command {
	flags := &draftFlags{}

	cmd := &cobra.Command{
		Use:     "edit <deal-id>",
		Short:   "Change fields of an existing deal",
		Example: `  dealboard deal edit d1 --stage negotiation --priority high`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd.Flags())
			if err != nil {
				return err
			}

			controller := a.newController(nil)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			if err := controller.OpenEdit(args[0]); err != nil {
				return err
			}
			return submit(cmd, controller, patch)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func submit(cmd *cobra.Command, controller *service.BoardController, patch dto.DealDraftPatch) error {
	if err := controller.UpdateDraft(patch.Apply); err != nil {
		return err
	}
	draft, _ := controller.Draft()

	if err := controller.SubmitDraft(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved deal %q\n\n", draft.Title)
	renderStats(out, controller.View().Stats)
	return nil
}

func newDealShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <deal-id>",
		Short: "Print one deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller := a.newController(nil)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			if err := controller.SelectDeal(args[0]); err != nil {
				return err
			}
			deal, _ := controller.SelectedDeal()
			renderDeal(cmd.OutOrStdout(), deal)
			return nil
		},
	}
}

func newDealDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <deal-id>",
		Short: "Delete a deal after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm service.Confirmer = service.AlwaysConfirm
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			controller := a.newController(confirm)
			if err := controller.LoadAll(cmd.Context()); err != nil {
				return err
			}
			if err := controller.DeleteDeal(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted deal %s, %d remaining\n", args[0], len(controller.Deals()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// promptConfirmer asks on out and reads a y/n answer from in
func promptConfirmer(in io.Reader, out io.Writer) service.Confirmer {
	reader := bufio.NewReader(in)
	return service.ConfirmFunc(func(deal domain.Deal) bool {
		fmt.Fprintf(out, "Delete deal %q (%s)? [y/N] ", deal.Title, deal.ID)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
}
