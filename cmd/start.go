package cmd

import (
	"context"
	"time"

	"github.com/JzuvGTI/jzrestapi/internal/conf"
	"github.com/JzuvGTI/jzrestapi/internal/db"
	"github.com/JzuvGTI/jzrestapi/internal/model"
	"github.com/JzuvGTI/jzrestapi/internal/op"
	"github.com/JzuvGTI/jzrestapi/internal/server"
	"github.com/JzuvGTI/jzrestapi/internal/source"
	"github.com/JzuvGTI/jzrestapi/internal/task"
	"github.com/JzuvGTI/jzrestapi/internal/utils/log"
	"github.com/JzuvGTI/jzrestapi/internal/utils/shutdown"
	"github.com/spf13/cobra"
)

var cfgFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start " + conf.APP_NAME,
	PreRun: func(cmd *cobra.Command, args []string) {
		conf.PrintBanner()
		conf.Load(cfgFile)
		log.SetLevel(conf.AppConfig.Log.Level)
	},
	Run: func(cmd *cobra.Command, args []string) {
		shutdown.Init(log.Logger)
		defer shutdown.Listen()
		if err := db.InitDB(conf.AppConfig.Database.Type, conf.AppConfig.Database.Path, conf.IsDebug()); err != nil {
			log.Errorf("database init error: %v", err)
			return
		}
		shutdown.Register(db.Close)

		if err := op.InitCache(); err != nil {
			log.Errorf("cache init error: %v", err)
			return
		}
		shutdown.Register(op.SaveCache)

		if err := op.UserInit(); err != nil {
			log.Errorf("user init error: %v", err)
			return
		}

		if err := seedEndpoints(); err != nil {
			log.Errorf("endpoint seed error: %v", err)
			return
		}

		if err := server.Start(); err != nil {
			log.Errorf("server start error: %v", err)
			return
		}
		shutdown.Register(server.Close)

		task.Init()
		go task.RUN()
	},
}

// seedEndpoints makes sure every registered source adapter has a catalog
// row. Existing rows keep their admin-set status.
func seedEndpoints() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, adapter := range source.All() {
		endpoint := model.Endpoint{
			Slug:        adapter.Slug(),
			Name:        adapter.Name(),
			Description: adapter.Description(),
		}
		if err := op.EndpointEnsure(&endpoint, ctx); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	startCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./data/config.json)")
	rootCmd.AddCommand(startCmd)
}
