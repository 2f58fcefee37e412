package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regform/internal/form"
	"github.com/zjrosen/regform/internal/log"
	"github.com/zjrosen/regform/internal/registration"
)

// errInvalidForm is returned when submit is run with values that fail
// validation. The field errors have already been printed.
var errInvalidForm = errors.New("form has validation errors")

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and submit the registration form without the terminal UI",
	Example: `  regform submit --username ada --language rust --food pizza --agree
  regform submit --username ada --language rust --food pizza --agree --dry-run`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("username", "", "username (3-20 characters)")
	submitCmd.Flags().String("language", "", "favorite language: javascript or rust")
	submitCmd.Flags().String("food", "", "favorite food: pizza, spaghetti or broccoli")
	submitCmd.Flags().Bool("agree", false, "agree to the terms")
	submitCmd.Flags().Bool("dry-run", false, "validate only, do not send")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	cleanupLog, err := startDebugLog("regform-submit")
	if err != nil {
		return err
	}
	defer cleanupLog()

	flags := cmd.Flags()
	var in registration.Values
	in.Username, _ = flags.GetString("username")
	in.FavLanguage, _ = flags.GetString("language")
	in.FavFood, _ = flags.GetString("food")
	in.Agreement, _ = flags.GetBool("agree")
	dryRun, _ := flags.GetBool("dry-run")

	provider, shutdown, err := startTracing()
	if err != nil {
		return err
	}
	defer shutdown()

	c := newClient(provider)
	defer func() { _ = c.Close() }()

	return submitValues(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), form.New(c), in, dryRun)
}

// submitValues feeds in through ctrl as change events, then submits. Field
// errors go to errOut and yield errInvalidForm; a server failure is returned
// as an error carrying the failure message.
func submitValues(ctx context.Context, out, errOut io.Writer, ctrl *form.Controller, in registration.Values, dryRun bool) error {
	changes := []struct {
		field registration.Field
		value any
	}{
		{registration.FieldUsername, in.Username},
		{registration.FieldFavLanguage, in.FavLanguage},
		{registration.FieldFavFood, in.FavFood},
		{registration.FieldAgreement, in.Agreement},
	}
	for _, ch := range changes {
		if err := ctrl.OnFieldChange(ch.field, ch.value); err != nil {
			return err
		}
	}

	if !ctrl.SubmitEnabled() {
		errs := ctrl.Errors()
		for _, f := range registration.Fields {
			if msg := errs.Get(f); msg != "" {
				_, _ = fmt.Fprintf(errOut, "  %s: %s\n", f, msg)
			}
		}
		return errInvalidForm
	}

	if dryRun {
		v := ctrl.Values()
		_, _ = fmt.Fprintf(out, "form is valid: %s, %s, %s (dry run, nothing sent)\n",
			v.Username,
			registration.OptionLabel(registration.LanguageOptions, v.FavLanguage),
			registration.OptionLabel(registration.FoodOptions, v.FavFood))
		return nil
	}

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	if outcome.Failure != "" {
		log.ErrorErr(log.CatForm, "submit command failed", outcome.Err)
		return errors.New(outcome.Failure)
	}
	_, _ = fmt.Fprintln(out, outcome.Success)
	return nil
}
