package app

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// reportingObserver is the application's reporting sink: failures and key
// loads are logged and forwarded as counters. It never propagates.
type reportingObserver struct {
	logger logging.Logger
	tags   []string
}

func newReportingObserver(logger logging.Logger, sessionName string) *reportingObserver {
	return &reportingObserver{
		logger: logger,
		tags:   []string{"session:" + sessionName},
	}
}

func (o *reportingObserver) OnKeyLoaded() {
	o.logger.Debug("Persistent key served", logging.Fields{})
	rootcollector.Metric("vidloader.keys.loaded", 1, o.tags)
}

func (o *reportingObserver) OnFailure(err *common.LoaderError) {
	o.logger.Warn("Resource load failure", logging.Fields{
		"code":  err.Code,
		"url":   err.URL,
		"error": err.Error(),
	})
	tags := append([]string{"code:" + err.Code}, o.tags...)
	rootcollector.Metric("vidloader.load.failures", 1, tags)
}

var _ common.Observer = (*reportingObserver)(nil)
