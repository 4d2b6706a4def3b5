// Package cli - утилита approver для ручного одобрения или отклонения запросов команд.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// DecisionSender публикует решение в очередь консьюмера
type DecisionSender interface {
	PublishDecision(ctx context.Context, req domain.Request) error
}

// SenderFactory открывает соединение с брокером, закрытие вызывается после отправки
type SenderFactory func(cfg *config.Config, log *logger.Logger) (DecisionSender, func() error)

func amqpSender(cfg *config.Config, log *logger.Logger) (DecisionSender, func() error) {
	publisher := broker.NewPublisher(cfg, log)
	return broker.NewDecisionPublisher(publisher), publisher.Close
}

type decisionFlags struct {
	teamID string
	campus string
	userID string
	reason string
	status string
}

func NewRootCommand(newSender SenderFactory) *cobra.Command {
	if newSender == nil {
		newSender = amqpSender
	}

	root := &cobra.Command{
		Use:   "approver",
		Short: "Approve or reject pending team requests",
		Long: `approver publishes a decision for a pending team request to the
decisions exchange. The teams service consumer applies it exactly
as it would apply a decision from the approvals service.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		decisionCommand("approve-team", "Decide on a newly created team", domain.RequestApproveTeam, newSender),
		rejectTeamCommand(newSender),
		decisionCommand("delete-team", "Decide on a team deletion request", domain.RequestDeleteTeam, newSender),
		decisionCommand("add-member", "Decide on a member addition request", domain.RequestAddTeamMember, newSender),
		decisionCommand("remove-member", "Decide on a member removal request", domain.RequestRemoveTeamMember, newSender),
	)
	return root
}

// Execute запускает approver с публикацией через RabbitMQ
func Execute() error {
	return NewRootCommand(nil).Execute()
}

// rejectTeamCommand - approve-team со статусом rejected по умолчанию
func rejectTeamCommand(newSender SenderFactory) *cobra.Command {
	cmd := decisionCommand("reject-team", "Reject a newly created team", domain.RequestApproveTeam, newSender)
	_ = cmd.Flags().Set("status", string(domain.RequestStatusRejected))
	cmd.Flags().Lookup("status").DefValue = string(domain.RequestStatusRejected)
	return cmd
}

func decisionCommand(use, short string, requestType domain.RequestType, newSender SenderFactory) *cobra.Command {
	var flags decisionFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(requestType)
			if err != nil {
				return err
			}

			cfg := config.Load()
			log := logger.New(cfg.App.ServiceName+"-approver", cfg.App.Env)
			defer log.Sync()

			sender, closeFn := newSender(cfg, log)
			defer closeFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RabbitMQ.ConnectTimeout)
			defer cancel()

			if err := sender.PublishDecision(ctx, req); err != nil {
				return fmt.Errorf("failed to publish decision: %w", err)
			}
			printDecision(cmd.OutOrStdout(), req)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.teamID, "team", "", "team id (UUID)")
	cmd.Flags().StringVar(&flags.campus, "campus", "", "campus code")
	cmd.Flags().StringVar(&flags.reason, "reason", "", "decision reason")
	cmd.Flags().StringVar(&flags.status, "status", string(domain.RequestStatusApproved), "decision: approved or rejected")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("campus")
	if requestType.NeedsUser() {
		cmd.Flags().StringVar(&flags.userID, "user", "", "user id of the member")
		_ = cmd.MarkFlagRequired("user")
	}
	return cmd
}

func (f decisionFlags) request(requestType domain.RequestType) (domain.Request, error) {
	teamID, err := uuid.Parse(f.teamID)
	if err != nil {
		return domain.Request{}, fmt.Errorf("invalid --team %q: %w", f.teamID, err)
	}

	status := domain.RequestStatus(f.status)
	if status != domain.RequestStatusApproved && status != domain.RequestStatusRejected {
		return domain.Request{}, fmt.Errorf("invalid --status %q: want approved or rejected", f.status)
	}
	return domain.NewRequest(requestType, teamID, f.campus, f.userID, "").Decide(status, f.reason), nil
}

func printDecision(w io.Writer, req domain.Request) {
	fmt.Fprintf(w, "%s %s: team=%s campus=%s", req.Status, req.RequestType, req.TeamID, req.CampusCode)
	if req.UserID != "" {
		fmt.Fprintf(w, " user=%s", req.UserID)
	}
	fmt.Fprintln(w)
}
