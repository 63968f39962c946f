package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/shiftboard-backend/internal/domain/entity"
	"github.com/ignatzorin/shiftboard-backend/internal/service"
)

var (
	tokenRole   string
	tokenUser   string
	tokenOrg    string
	tokenTTL    time.Duration
	tokenSecret string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Выпустить токен доступа для локальной разработки",
	Long: `Подписывает токен тем же секретом, что и сервер (JWT_SECRET).
Идентификация пользователей внешняя, команда нужна для dev окружения и ручных проверок.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := tokenSecret
		if secret == "" {
			secret = os.Getenv("JWT_SECRET")
		}
		return runToken(cmd.OutOrStdout(), tokenParams{
			Secret: secret,
			Role:   tokenRole,
			User:   tokenUser,
			Org:    tokenOrg,
			TTL:    tokenTTL,
		})
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(entity.RoleOrganization), "роль: organization, candidate или admin")
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "id пользователя (по умолчанию новый uuid)")
	tokenCmd.Flags().StringVar(&tokenOrg, "org", "", "id организации для роли organization")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "время жизни токена")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "секрет подписи (по умолчанию JWT_SECRET)")

	rootCmd.AddCommand(tokenCmd)
}

type tokenParams struct {
	Secret string
	Role   string
	User   string
	Org    string
	TTL    time.Duration
}

func runToken(out io.Writer, p tokenParams) error {
	if p.Secret == "" {
		return errors.New("JWT_SECRET не задан")
	}

	actor := entity.Actor{Role: entity.Role(p.Role), UserID: uuid.New()}
	if !actor.Role.IsValid() {
		return fmt.Errorf("неизвестная роль %q", p.Role)
	}
	if p.User != "" {
		id, err := uuid.Parse(p.User)
		if err != nil {
			return fmt.Errorf("--user: %w", err)
		}
		actor.UserID = id
	}
	if p.Org != "" {
		id, err := uuid.Parse(p.Org)
		if err != nil {
			return fmt.Errorf("--org: %w", err)
		}
		actor.OrganizationID = id
	}
	if actor.Role == entity.RoleOrganization && actor.OrganizationID == uuid.Nil {
		return errors.New("для роли organization нужен --org")
	}

	token, expiresAt, err := service.NewTokenManager(p.Secret, p.TTL).Issue(actor)
	if err != nil {
		return err
	}
	return writeJSON(out, map[string]any{
		"access_token": token,
		"user_id":      actor.UserID,
		"role":         actor.Role,
		"expires_at":   expiresAt.UTC().Format(time.RFC3339),
	})
}
