// Copyright 2023 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// leefdunk writes randomly generated LEEF log lines to files, for trying out
// leefsuck without access to a real LEEF producer.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit"
)

var vendors = [][2]string{
	{"Microsoft", "MSExchange"},
	{"IBM", "QRadar"},
	{"Palo Alto Networks", "PAN-OS"},
	{"Fortinet", "FortiGate"},
}

var eventIds = []string{
	"Logon Failure",
	"Logon Success",
	"Policy Violation",
	"Malware Detected",
}

func randomAttributes() string {
	switch rand.Intn(4) {
	case 0:
		return gofakeit.Generate(fmt.Sprintf("src=%v dst=%v suser=%v sev=#",
			gofakeit.IPv4Address(), gofakeit.IPv4Address(), gofakeit.FirstName()))
	case 1:
		return gofakeit.Generate(fmt.Sprintf("src=%v dstPort=### proto=tcp cat={hacker.noun}",
			gofakeit.IPv4Address()))
	case 2:
		return gofakeit.Generate(fmt.Sprintf("usrName=%v cs1Label=Reason Code cs1=### msg={hacker.verb} {hacker.noun}",
			gofakeit.FirstName()))
	default:
		return gofakeit.Generate(fmt.Sprintf("src=%v request=https://%v/{lorem.word} method=GET",
			gofakeit.IPv4Address(), gofakeit.DomainName()))
	}
}

func main() {
	numFiles := flag.Int("numFiles", 1, "The number of files that will be written to. The files will be named leef-*.txt where * is an increasing number.")
	sleepTime := flag.Duration("sleepTime", 100*time.Millisecond, "The duration to sleep between logging")
	syslogFraction := flag.Float64("syslogFraction", 0.5, "The fraction of lines that will be wrapped in a syslog envelope with priority, timestamp and host.")

	flag.Parse()

	for i := 0; i < *numFiles; i++ {
		go func(i int) {
			filename := "leef-" + strconv.Itoa(i) + ".txt"
			file, err := os.Create(filename)
			if err != nil {
				log.Fatal("Got error when creating file "+filename+":", err)
			}
			for {
				line := randomLeefLine(*syslogFraction)
				if _, err := file.WriteString(line + "\n"); err != nil {
					log.Fatal("Got error when writing to file "+filename+":", err)
				}
				if sleepTime.Nanoseconds() != 0 {
					time.Sleep(*sleepTime)
				}
			}
		}(i)
	}

	select {}
}

func randomLeefLine(syslogFraction float64) string {
	vendor := vendors[rand.Intn(len(vendors))]
	eventId := gofakeit.RandString(eventIds)
	attrs := randomAttributes()
	version := "1.0"
	if rand.Intn(2) == 0 {
		version = "2.0"
	}
	line := fmt.Sprintf("LEEF:%v|%v|%v|%v.%v.%v|%v|%v",
		version, vendor[0], vendor[1], rand.Intn(10), rand.Intn(10), rand.Intn(100), eventId, attrs)
	if rand.Float64() < syslogFraction {
		pri := rand.Intn(192)
		line = fmt.Sprintf("<%v>%v host%v %v",
			pri, time.Now().Format(time.RFC3339), rand.Intn(100), line)
	}
	return line
}
