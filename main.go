package main

import (
	"fmt"

	"github.com/planoraforstudents/PlanoraForStudents/api"
	"github.com/planoraforstudents/PlanoraForStudents/config"
	"github.com/planoraforstudents/PlanoraForStudents/db"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if config.MigrateOnly() {
		if _, err := db.New(); err != nil {
			panic(err)
		}
		return
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
