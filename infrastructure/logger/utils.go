package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs functionName at debug level and returns a
// function that logs the elapsed time once called.
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}

// LogAndMeasureItemsExecutionTime is like LogAndMeasureExecutionTime but also
// reports how many items were handled and the average time per item.
func LogAndMeasureItemsExecutionTime(log *Logger, functionName string, itemCount int) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start (%d items)", functionName, itemCount)
	return func() {
		took := time.Since(start)
		perItem := time.Duration(0)
		if itemCount > 0 {
			perItem = took / time.Duration(itemCount)
		}
		log.Debugf("%s end. Took: %s (%s per item)", functionName, took, perItem)
	}
}
