// @title        SupplementIQ API
// @version      1.0
// @description  社群維護的營養補充品資料庫 API
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import "log"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
