package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
)

func accountsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account registry operations",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var accounts []dto.AccountResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/accounts/", pageQuery(limit, offset), nil, &accounts); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), accounts)
			}
			return printAccounts(cmd.OutOrStdout(), accounts)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of accounts")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of accounts to skip")

	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/accounts/"+url.PathEscape(args[0]), nil, nil, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}

	var req dto.RegisterAccountRequest
	registerCmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			var account dto.AccountResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/accounts/", nil, req, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}
	registerCmd.Flags().StringVar(&req.Classification, "classification", "", "asset, liability, capital, income or expense")
	registerCmd.Flags().StringVar(&req.ContraOf, "contra-of", "", "Register as a contra account of this account")
	registerCmd.Flags().BoolVar(&req.RetainedEarnings, "retained-earnings", false, "Designate as the retained earnings account")

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <name>",
		Short: "Stop an account from receiving new postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			path := "/accounts/" + url.PathEscape(args[0]) + "/deactivate"
			if err := c.client().do(cmd.Context(), http.MethodPost, path, nil, nil, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}

	cmd.AddCommand(listCmd, getCmd, registerCmd, deactivateCmd)
	return cmd
}

func entriesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Journal entry operations",
	}

	var (
		account, from, to string
		limit, offset     int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries in posting order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := pageQuery(limit, offset)
			setIf(q, "account", account)
			setIf(q, "from", from)
			setIf(q, "to", to)

			var entries []dto.EntryResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/entries/", q, nil, &entries); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
	listCmd.Flags().StringVar(&account, "account", "", "Only entries touching this account")
	listCmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	listCmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")
	listCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of entries")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry dto.EntryResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/entries/"+url.PathEscape(args[0]), nil, nil, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}

	var (
		date, description, file string
		debits, credits         []string
	)
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a balanced journal entry",
		Example: `  bookkeeper-cli entries record --date 2024-01-05 --debit cash=100 --credit sales=100
  bookkeeper-cli entries record --file entry.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req dto.RecordEntryRequest
			if file != "" {
				if err := readDocument(cmd, file, &req); err != nil {
					return err
				}
			} else {
				d, err := parseDateFlag("date", date)
				if err != nil {
					return err
				}
				req.Date = d
				req.Description = description
				if req.Postings, err = postingFlags(debits, credits); err != nil {
					return err
				}
			}

			var entry dto.EntryResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/entries/", nil, req, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
	recordCmd.Flags().StringVar(&date, "date", "", "Entry date, YYYY-MM-DD")
	recordCmd.Flags().StringVar(&description, "description", "", "Entry description")
	recordCmd.Flags().StringArrayVar(&debits, "debit", nil, "Debit posting as account=amount (repeatable)")
	recordCmd.Flags().StringArrayVar(&credits, "credit", nil, "Credit posting as account=amount (repeatable)")
	recordCmd.Flags().StringVarP(&file, "file", "f", "", "Read the entry as JSON from a file, - for stdin")

	var (
		openingDate, openingDescription string
		balances                        []string
	)
	openingCmd := &cobra.Command{
		Use:   "opening",
		Short: "Record opening balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag("date", openingDate)
			if err != nil {
				return err
			}
			req := dto.OpeningBalancesRequest{Date: d, Description: openingDescription}
			for _, b := range balances {
				account, amount, err := parseAccountAmount(b)
				if err != nil {
					return err
				}
				req.Balances = append(req.Balances, dto.OpeningBalanceRequest{Account: account, Amount: amount})
			}

			var entry dto.EntryResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/entries/opening", nil, req, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
	openingCmd.Flags().StringVar(&openingDate, "date", "", "Opening date, YYYY-MM-DD")
	openingCmd.Flags().StringVar(&openingDescription, "description", "", "Entry description")
	openingCmd.Flags().StringArrayVar(&balances, "balance", nil, "Opening balance as account=amount (repeatable)")

	var reverseDate, reverseDescription string
	reverseCmd := &cobra.Command{
		Use:   "reverse <id>",
		Short: "Record the mirror image of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.ReverseEntryRequest{Description: reverseDescription}
			if reverseDate != "" {
				d, err := parseDateFlag("date", reverseDate)
				if err != nil {
					return err
				}
				req.Date = &d
			}

			var entry dto.EntryResponse
			path := "/entries/" + url.PathEscape(args[0]) + "/reverse"
			if err := c.client().do(cmd.Context(), http.MethodPost, path, nil, req, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
	reverseCmd.Flags().StringVar(&reverseDate, "date", "", "Reversal date, defaults to the original entry's date")
	reverseCmd.Flags().StringVar(&reverseDescription, "description", "", "Reversal description")

	cmd.AddCommand(listCmd, getCmd, recordCmd, openingCmd, reverseCmd)
	return cmd
}

func balanceCmd(c *cli) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Show the balance of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "as_of", asOf)

			var resp dto.BalanceResponse
			path := "/accounts/" + url.PathEscape(args[0]) + "/balance"
			if err := c.client().do(cmd.Context(), http.MethodGet, path, q, nil, &resp); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%s normal)\n", resp.Account, resp.Balance.StringFixed(2), resp.NormalSide)
			return err
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Balance as of this date, YYYY-MM-DD")
	return cmd
}

func balancesCmd(c *cli) *cobra.Command {
	var from, to string
	var exclude []string
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the balance of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "from", from)
			setIf(q, "to", to)
			setIf(q, "exclude", strings.Join(exclude, ","))

			var resp dto.BalancesResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/balances", q, nil, &resp); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tCLASSIFICATION\tSIDE\tAMOUNT")
			for _, l := range resp.Accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", truncate(l.Account, 32), l.Classification, l.Side, l.Amount.StringFixed(2))
			}
			fmt.Fprintf(tw, "TOTAL\t\tdebit\t%s\n", resp.TotalDebits.StringFixed(2))
			fmt.Fprintf(tw, "TOTAL\t\tcredit\t%s\n", resp.TotalCredits.StringFixed(2))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Only entries on or after this date")
	cmd.Flags().StringVar(&to, "to", "", "Only entries on or before this date")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Entry kinds to leave out, e.g. closing")
	return cmd
}

func periodsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Accounting period operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounting periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var periods []dto.PeriodResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/periods/", nil, nil, &periods); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), periods)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTART\tEND\tSTATUS")
			for _, p := range periods {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, truncate(p.Name, 24), dto.FormatDate(p.Start.Time), dto.FormatDate(p.End.Time), p.Status)
			}
			return tw.Flush()
		},
	}

	var name, start, end string
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open an accounting period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := parseDateFlag("start", start)
			if err != nil {
				return err
			}
			e, err := parseDateFlag("end", end)
			if err != nil {
				return err
			}

			var period dto.PeriodResponse
			req := dto.OpenPeriodRequest{Name: name, Start: s, End: e}
			if err := c.client().do(cmd.Context(), http.MethodPost, "/periods/", nil, req, &period); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), period)
		},
	}
	openCmd.Flags().StringVar(&name, "name", "", "Period name")
	openCmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD")
	openCmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD")

	var retained string
	closeCmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close a period into retained earnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ClosePeriodResponse
			path := "/periods/" + url.PathEscape(args[0]) + "/close"
			req := dto.ClosePeriodRequest{RetainedEarnings: retained}
			if err := c.client().do(cmd.Context(), http.MethodPost, path, nil, req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	closeCmd.Flags().StringVar(&retained, "retained-earnings", "", "Account receiving net income, defaults to the designated one")

	cmd.AddCommand(listCmd, openCmd, closeCmd)
	return cmd
}

func reportsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Financial reports",
	}

	var tbAsOf string
	trialCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "as_of", tbAsOf)

			var tb dto.TrialBalanceResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/reports/trial-balance", q, nil, &tb); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), tb)
			}
			return printTrialBalance(cmd.OutOrStdout(), tb)
		},
	}
	trialCmd.Flags().StringVar(&tbAsOf, "as-of", "", "Report date, YYYY-MM-DD")

	var isFrom, isTo, isPeriod string
	incomeCmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Income and expenses over a date range or period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "from", isFrom)
			setIf(q, "to", isTo)
			setIf(q, "period", isPeriod)

			var stmt dto.IncomeStatementResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/reports/income-statement", q, nil, &stmt); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stmt)
		},
	}
	incomeCmd.Flags().StringVar(&isFrom, "from", "", "First date, YYYY-MM-DD")
	incomeCmd.Flags().StringVar(&isTo, "to", "", "Last date, YYYY-MM-DD")
	incomeCmd.Flags().StringVar(&isPeriod, "period", "", "Period ID; overrides --from and --to")

	var bsAsOf, bsPeriod string
	sheetCmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets against liabilities and capital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			setIf(q, "as_of", bsAsOf)
			setIf(q, "period", bsPeriod)

			var sheet dto.BalanceSheetResponse
			if err := c.client().do(cmd.Context(), http.MethodGet, "/reports/balance-sheet", q, nil, &sheet); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sheet)
		},
	}
	sheetCmd.Flags().StringVar(&bsAsOf, "as-of", "", "Report date, YYYY-MM-DD")
	sheetCmd.Flags().StringVar(&bsPeriod, "period", "", "Period ID; reports as of its last day")

	cmd.AddCommand(trialCmd, incomeCmd, sheetCmd)
	return cmd
}

func ledgerCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return checkConsistency(cmd, c.client())
		},
	}

	var from, to string
	showCmd := &cobra.Command{
		Use:   "show <account>",
		Short: "Show the running ledger of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "from", from)
			setIf(q, "to", to)

			var ledger dto.AccountLedgerResponse
			path := "/accounts/" + url.PathEscape(args[0]) + "/ledger"
			if err := c.client().do(cmd.Context(), http.MethodGet, path, q, nil, &ledger); err != nil {
				return err
			}
			if c.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), ledger)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "\t\topening\t\t%s\n", ledger.Opening.StringFixed(2))
			for _, l := range ledger.Lines {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s\t%s\n",
					l.Sequence, dto.FormatDate(l.Date.Time), truncate(l.Description, 32), l.Side, l.Amount.StringFixed(2), l.Balance.StringFixed(2))
			}
			fmt.Fprintf(tw, "\t\tclosing\t\t%s\n", ledger.Closing.StringFixed(2))
			return tw.Flush()
		},
	}
	showCmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	showCmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")

	cmd.AddCommand(consistencyCmd, showCmd)
	return cmd
}

var errInconsistent = errors.New("ledger is inconsistent")

func checkConsistency(cmd *cobra.Command, client *apiClient) error {
	status, raw, err := client.send(cmd.Context(), http.MethodGet, "/ledger/consistency", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusConflict {
		return decodeError(status, raw)
	}

	var report dto.ConsistencyResponse
	if err := json.Unmarshal(raw, &report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if report.Consistent {
		fmt.Fprintln(out, "Consistency check PASSED")
	} else {
		fmt.Fprintln(out, "Consistency check FAILED")
	}
	fmt.Fprintf(out, "Entries: %d\n", report.Entries)
	fmt.Fprintf(out, "Debits: %s Credits: %s\n", report.TotalDebits.StringFixed(2), report.TotalCredits.StringFixed(2))
	fmt.Fprintf(out, "Accounting equation holds: %v\n", report.EquationHolds)
	for _, id := range report.UnbalancedEntries {
		fmt.Fprintf(out, "Unbalanced entry: %s\n", id)
	}

	if !report.Consistent {
		return errInconsistent
	}
	return nil
}

func importCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load accounts, opening balances and entries atomically",
		Long: `Import a document with "accounts", "opening_balances" and "entries".
Files ending in .yaml or .yml are read as YAML, everything else as JSON.
Use - to read JSON from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.ImportRequest
			if err := readDocument(cmd, args[0], &req); err != nil {
				return err
			}

			var resp dto.ImportResponse
			if err := c.client().do(cmd.Context(), http.MethodPost, "/import", nil, req, &resp); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts and %d entries\n", len(resp.Accounts), len(resp.Entries))
			return err
		},
	}
}

func printAccounts(w io.Writer, accounts []dto.AccountResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCLASSIFICATION\tNORMAL\tCONTRA OF\tACTIVE")
	for _, a := range accounts {
		contraOf := a.ContraOf
		if contraOf == "" {
			contraOf = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", truncate(a.Name, 32), a.Classification, a.NormalSide, contraOf, a.Active)
	}
	return tw.Flush()
}

func printEntries(w io.Writer, entries []dto.EntryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tDATE\tKIND\tID\tDESCRIPTION\tPOSTINGS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			e.Sequence, dto.FormatDate(e.Date.Time), e.Kind, e.ID, truncate(e.Description, 40), len(e.Postings))
	}
	return tw.Flush()
}

func printTrialBalance(w io.Writer, tb dto.TrialBalanceResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tCLASSIFICATION\tDEBIT\tCREDIT")
	for _, l := range tb.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", truncate(l.Account, 32), l.Classification, amountOrBlank(l.Debit), amountOrBlank(l.Credit))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%s\n", tb.TotalDebits.StringFixed(2), tb.TotalCredits.StringFixed(2))
	if !tb.Balanced {
		fmt.Fprintln(tw, "OUT OF BALANCE\t\t\t")
	}
	return tw.Flush()
}

func amountOrBlank(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// parseAccountAmount splits "account=amount".
func parseAccountAmount(s string) (string, decimal.Decimal, error) {
	account, amount, ok := strings.Cut(s, "=")
	if !ok || account == "" {
		return "", decimal.Decimal{}, fmt.Errorf("expected account=amount, got %q", s)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", decimal.Decimal{}, fmt.Errorf("invalid amount in %q: %w", s, err)
	}
	return account, d, nil
}

func postingFlags(debits, credits []string) ([]dto.PostingRequest, error) {
	var postings []dto.PostingRequest
	for _, group := range []struct {
		side  string
		items []string
	}{{"debit", debits}, {"credit", credits}} {
		for _, item := range group.items {
			account, amount, err := parseAccountAmount(item)
			if err != nil {
				return nil, err
			}
			postings = append(postings, dto.PostingRequest{Account: account, Side: group.side, Amount: amount})
		}
	}
	return postings, nil
}

func parseDateFlag(name, value string) (dto.Date, error) {
	if value == "" {
		return dto.Date{}, fmt.Errorf("--%s is required", name)
	}
	t, err := dto.ParseDate(value)
	if err != nil {
		return dto.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return dto.Date{Time: t}, nil
}
