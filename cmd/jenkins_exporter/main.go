// jenkins_exporter exposes Jenkins job status, metrics plugin data and
// pipeline stage durations as Prometheus metrics.
//
// Usage:
//
//	# Serve metrics on :9118
//	jenkins_exporter run --jenkins-url http://jenkins:8080 --api-key $KEY
//
//	# Serve with a configuration file, reloading it on change
//	jenkins_exporter run --config /etc/jenkins_exporter.yml --watch-config
//
//	# Run one scrape and print the result
//	jenkins_exporter collect --config /etc/jenkins_exporter.yml --output json
//
//	# Check a configuration file
//	jenkins_exporter validate --config /etc/jenkins_exporter.yml
//
//	# Show build information
//	jenkins_exporter version
package main

func main() {
	Execute()
}
