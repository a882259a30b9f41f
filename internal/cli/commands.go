package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garnizeh/jobboard/internal/app"
	"github.com/garnizeh/jobboard/internal/applications"
	"github.com/garnizeh/jobboard/pkg/models"
)

func registerCmd(a *app.App) *cobra.Command {
	var form models.RegisterForm
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Email == "" || form.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			form.ConfirmPassword = form.Password
			switch models.Role(role) {
			case models.RoleJobSeeker, models.RoleEmployer:
				form.Role = models.Role(role)
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			u, err := a.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			cmd.Printf("Welcome, %s! Your account id is %s.\n", displayName(u), u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.FirstName, "first", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	cmd.Flags().StringVar(&form.PhoneNumber, "phone", "", "Phone number")
	cmd.Flags().StringVar(&form.Gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&role, "role", string(models.RoleJobSeeker), "jobseeker or employer")
	return cmd
}

func loginCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			cmd.Printf("Welcome back, %s!\n", displayName(u))
			return nil
		},
	}
}

func logoutCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Signed out.")
			return nil
		},
	}
}

func whoamiCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := a.Session.Snapshot()
			if !snap.IsAuthenticated {
				cmd.Println("Not signed in.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Id:\t%s\n", snap.User.ID)
			fmt.Fprintf(w, "Name:\t%s\n", displayName(snap.User))
			fmt.Fprintf(w, "Email:\t%s\n", snap.User.Email)
			fmt.Fprintf(w, "Role:\t%s\n", snap.User.Role)
			return w.Flush()
		},
	}
}

func jobsCmd(a *app.App) *cobra.Command {
	var (
		f      models.JobFilters
		remote string
		page   int
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			switch {
			case reset:
				a.Jobs.ClearFilters()
			case flags.Changed("search") || flags.Changed("type") || flags.Changed("location") || flags.Changed("remote"):
				r, err := parseRemote(remote)
				if err != nil {
					return err
				}
				f.Remote = r
				a.Jobs.SetFilters(f)
			}
			if flags.Changed("page") {
				a.Jobs.SetCurrentPage(page)
			}

			if _, err := a.Jobs.FetchJobs(cmd.Context(), a.Jobs.Filters(), models.Pagination{}); err != nil {
				return err
			}
			snap := a.Jobs.Snapshot()
			if len(snap.Jobs) == 0 {
				cmd.Println("No jobs found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tREMOTE\tAPPLIED")
			for _, j := range snap.Jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					j.ID, j.Title, j.Company, j.Location, j.Type, yesNo(j.Remote), yesNo(a.Applications.IsApplied(j.ID)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			p := snap.Pagination
			cmd.Printf("Page %d of %d (%d jobs)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "Match title, company or location")
	cmd.Flags().StringVar(&f.Type, "type", "", "full-time, part-time, contract or internship")
	cmd.Flags().StringVar(&f.Location, "location", "", "Location contains")
	cmd.Flags().StringVar(&remote, "remote", "any", "yes, no or any")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&reset, "clear", false, "Drop all filters")
	return cmd
}

func jobCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.Jobs.FetchJobByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Title:\t%s\n", j.Title)
			fmt.Fprintf(w, "Company:\t%s\n", j.Company)
			fmt.Fprintf(w, "Location:\t%s\n", j.Location)
			fmt.Fprintf(w, "Type:\t%s\n", j.Type)
			fmt.Fprintf(w, "Remote:\t%s\n", yesNo(j.Remote))
			fmt.Fprintf(w, "Closes:\t%s\n", j.ClosingDate)
			if len(j.Qualifications) > 0 {
				fmt.Fprintf(w, "Qualifications:\t%s\n", strings.Join(j.Qualifications, "; "))
			}
			fmt.Fprintf(w, "Applied:\t%s\n", yesNo(a.Applications.IsApplied(j.ID)))
			return w.Flush()
		},
	}
}

func postCmd(a *app.App) *cobra.Command {
	var (
		j      models.Job
		jobTyp string
	)
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a job (employers only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j.Type = models.JobType(jobTyp)
			created, err := a.PostJob(cmd.Context(), j)
			if err != nil {
				return err
			}
			cmd.Printf("Job created with id %s.\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&j.Title, "title", "", "Job title")
	cmd.Flags().StringVar(&j.Company, "company", "", "Company")
	cmd.Flags().StringVar(&j.Location, "location", "", "Location")
	cmd.Flags().StringVar(&jobTyp, "type", string(models.JobFullTime), "full-time, part-time, contract or internship")
	cmd.Flags().BoolVar(&j.Remote, "remote", false, "Remote position")
	cmd.Flags().StringVar(&j.ClosingDate, "closing", "", "Closing date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&j.Qualifications, "qualification", nil, "Qualification, repeatable")
	return cmd
}

func applyCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.Apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Applied to %s at %s.\n", entry.JobTitle, entry.Company)
			return nil
		},
	}
}

func checkCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <job-id>",
		Short: "Ask the server whether you applied to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.HasApplied(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ok {
				cmd.Println("You have applied to this job.")
			} else {
				cmd.Println("You have not applied to this job.")
			}
			return nil
		},
	}
}

func appsCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List your applications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.RefreshApplications(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				cmd.Println("No applications yet.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tTITLE\tCOMPANY\tSTATUS\tAPPLIED AT")
			for _, ap := range applications.SortByAppliedAt(list) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ap.JobID, ap.JobTitle, ap.Company, ap.Status, ap.AppliedAt)
			}
			return w.Flush()
		},
	}
}

func statusCmd(a *app.App) *cobra.Command {
	valid := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		valid[i] = string(s)
	}
	return &cobra.Command{
		Use:       "status <job-id> <status>",
		Short:     "Change the status of an application",
		Long:      "Change the status of an application. Valid statuses: " + strings.Join(valid, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: valid,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.UpdateStatus(cmd.Context(), args[0], models.ApplicationStatus(args[1])); err != nil {
				return err
			}
			cmd.Printf("Application %s is now %s.\n", args[0], args[1])
			return nil
		},
	}
}

func statsCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count your applications per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.RefreshApplications(cmd.Context()); err != nil {
				return err
			}
			s := a.Applications.Stats()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Total:\t%d\n", s.Total)
			fmt.Fprintf(w, "Applied:\t%d\n", s.Applied)
			fmt.Fprintf(w, "Under review:\t%d\n", s.UnderReview)
			fmt.Fprintf(w, "Interviews:\t%d\n", s.Interviews)
			fmt.Fprintf(w, "Hired:\t%d\n", s.Hired)
			fmt.Fprintf(w, "Rejected:\t%d\n", s.Rejected)
			return w.Flush()
		},
	}
}

func parseRemote(v string) (*bool, error) {
	switch strings.ToLower(v) {
	case "", "any":
		return nil, nil
	case "yes", "true":
		t := true
		return &t, nil
	case "no", "false":
		f := false
		return &f, nil
	}
	return nil, fmt.Errorf("--remote must be yes, no or any")
}

func displayName(u *models.SessionUser) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
