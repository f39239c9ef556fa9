package main

import (
	"log"
	"os"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/payroll"
	"github.com/louisFankam/edumali-sub000/core/roster"
	"github.com/louisFankam/edumali-sub000/core/subject"
	"github.com/louisFankam/edumali-sub000/core/year"
	emailsvc "github.com/louisFankam/edumali-sub000/services/email"
	logsvc "github.com/louisFankam/edumali-sub000/services/logger"
	"github.com/louisFankam/edumali-sub000/storage/record"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up the record store client
	baseURL := core.Conf.GetString("storeURL")
	var store *record.Client
	if token := core.Conf.GetString("storeToken"); token != "" {
		store = record.NewClient(baseURL, token)
	} else {
		store = record.NewClientWithPassword(
			baseURL,
			core.Conf.GetString("storeIdentity"),
			core.Conf.GetString("storePassword"),
		)
	}

	// set up services
	appLogger := newAppLogger(logger)
	mailSvc := newEmailService(appLogger)

	// start CLI
	cli := commandLine{
		store:      store,
		yearSvc:    year.NewService(store),
		rosterSvc:  roster.NewService(store),
		subjectSvc: subject.NewService(store),
		payrollSvc: payroll.NewService(store, mailSvc, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newAppLogger(std *log.Logger) core.Logger {
	if core.Conf.GetBool("debug") {
		return logsvc.NewStdLogger(std)
	}
	return logsvc.NewRollbarLogger(std)
}

func newEmailService(logger core.Logger) core.EmailService {
	if core.Conf.GetBool("debug") {
		return emailsvc.NewConsoleService()
	}
	return emailsvc.NewSendgridService(logger)
}
