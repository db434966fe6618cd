package bench

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Measurement is the wall clock and CPU time spent on one operation
type Measurement struct {
	Label   string
	Elapsed time.Duration
	CPU     time.Duration
}

// Utilization returns CPU time as a percentage of elapsed time.
// It is 0 when no time elapsed and may exceed 100.
func (measurement Measurement) Utilization() float64 {
	if measurement.Elapsed <= 0 {
		return 0
	}

	return 100 * float64(measurement.CPU) / float64(measurement.Elapsed)
}

// String formats the measurement the way it is reported
func (measurement Measurement) String() string {
	return fmt.Sprintf("%s in %.2fs (%.0f%% CPU)", measurement.Label, measurement.Elapsed.Seconds(), measurement.Utilization())
}

// Timer measures wall clock and process CPU time from the moment it starts
type Timer struct {
	wall time.Time
	cpu  time.Duration
}

// StartTimer starts a timer
func StartTimer() Timer {
	return Timer{wall: time.Now(), cpu: processCPUTime()}
}

// Stop returns what was spent since the timer started
func (timer Timer) Stop(label string) Measurement {
	elapsed := time.Since(timer.wall)
	cpu := processCPUTime() - timer.cpu

	if cpu < 0 {
		cpu = 0
	}

	return Measurement{Label: label, Elapsed: elapsed, CPU: cpu}
}

// processCPUTime returns user plus system time consumed by the
// process so far or 0 if the kernel will not say
func processCPUTime() time.Duration {
	var usage unix.Rusage

	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0
	}

	return time.Duration(usage.Utime.Nano() + usage.Stime.Nano())
}
