/*
 *     Copyright 2023 The Lstmsweep Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dependency

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/phayes/freeport"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	logger "github.com/reviewlab/lstmsweep/internal/dflog"
)

// PProfPortEnv pins the port of the debug server, a free port is used otherwise.
const PProfPortEnv = "LSTMSWEEP_PPROF_PORT"

// InitMonitor serves go pprof and statsview in verbose mode and returns
// the function stopping it.
func InitMonitor(verbose bool, log logger.Logger) func() {
	if !verbose {
		return func() {}
	}

	port, _ := strconv.Atoi(os.Getenv(PProfPortEnv))
	if port == 0 {
		var err error
		if port, err = freeport.GetFreePort(); err != nil {
			log.Warnf("get free port for debug server failed: %s", err.Error())
			return func() {}
		}
	}

	debugListen := fmt.Sprintf("localhost:%d", port)
	viewer.SetConfiguration(viewer.WithAddr(debugListen))
	vm := statsview.New()

	go func() {
		logger.With(log, "pprof", fmt.Sprintf("http://%s/debug/pprof", debugListen),
			"statsview", fmt.Sprintf("http://%s/debug/statsview", debugListen)).
			Infof("enable debug at http://%s", debugListen)

		if err := vm.Start(); err != nil {
			log.Warnf("serve go pprof error: %s", err.Error())
		}
	}()

	return vm.Stop
}

// LogHost logs the cpu and memory the sweep trains on.
func LogHost(log logger.Logger) {
	cores, err := cpu.Counts(true)
	if err != nil {
		log.Warnf("read cpu count failed: %s", err.Error())
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warnf("read memory failed: %s", err.Error())
		return
	}

	log.Infof("host cpu=%d, memory total=%s, available=%s", cores,
		units.BytesSize(float64(vm.Total)), units.BytesSize(float64(vm.Available)))
}
