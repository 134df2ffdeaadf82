package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		sc := cfg.Server
		if v, _ := f.GetString("addr"); v != "" {
			sc.Addr = v
		}
		if f.Changed("test-mode") {
			sc.TestMode, _ = f.GetBool("test-mode")
		}
		if v, _ := f.GetString("tls-cert"); v != "" {
			sc.TLSCert = v
		}
		if v, _ := f.GetString("tls-key"); v != "" {
			sc.TLSKey = v
		}
		quizzes, reports := cfg.QuizzesDir, cfg.ReportsDir
		if v, _ := f.GetString("quizzes"); v != "" {
			quizzes = v
		}
		if v, _ := f.GetString("reports"); v != "" {
			reports = v
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(server.Config{
			Addr:          sc.Addr,
			QuizzesDir:    quizzes,
			ReportsDir:    reports,
			CORSOrigins:   sc.CORSOrigins,
			TestMode:      sc.TestMode,
			TLSCert:       sc.TLSCert,
			TLSKey:        sc.TLSKey,
			PassThreshold: cfg.Run.PassThreshold,
			HistoryLimit:  cfg.Run.HistoryLimit,
			AttemptTTL:    sc.AttemptTTL,
			MaxAttempts:   sc.MaxAttempts,
		}, st.AttemptRepo(), log)

		log.WithFields(logrus.Fields{
			"addr":      sc.Addr,
			"quizzes":   quizzes,
			"test_mode": sc.TestMode,
			"tls":       sc.TLSCert != "",
			"database":  st.Dialect(),
		}).Info("starting server")
		if err := srv.Serve(cmd.Context()); err != nil {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "Listen address (default from config)")
	f.String("quizzes", "", "Quiz root directory (default from config)")
	f.String("reports", "", "Report directory (default from config)")
	f.String("tls-cert", "", "TLS certificate file")
	f.String("tls-key", "", "TLS key file")
	f.Bool("test-mode", false, "List sample/test/demo/example quiz folders")
	serveCmd.MarkFlagsRequiredTogether("tls-cert", "tls-key")
}
