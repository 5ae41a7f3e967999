package jenkinstest

// Paths served by a fixture controller.
const (
	JobsPath    = "/api/json"
	MetricsPath = "/metrics/" + APIKey + "/metrics"
	PingPath    = "/metrics/" + APIKey + "/ping"
)

// DescribePath returns the wfapi/describe path for one build.
func DescribePath(job, build string) string {
	return "/job/" + job + "/" + build + "/wfapi/describe"
}

// JobsJSON is a job listing with one pipeline job, one freestyle job and one
// pipeline job that never ran.
const JobsJSON = `{
  "_class": "hudson.model.Hudson",
  "jobs": [
    {
      "_class": "org.jenkinsci.plugins.workflow.job.WorkflowJob",
      "name": "deploy",
      "lastBuild": {"_class": "org.jenkinsci.plugins.workflow.job.WorkflowRun", "number": 42, "duration": 90000, "timestamp": 1700000000000},
      "lastCompletedBuild": {"number": 42, "duration": 90000, "timestamp": 1700000000000},
      "lastFailedBuild": null,
      "lastStableBuild": {"number": 41, "duration": 80000, "timestamp": 1699990000000},
      "lastSuccessfulBuild": {"number": 42, "duration": 90000, "timestamp": 1700000000000},
      "lastUnstableBuild": null,
      "lastUnsuccessfulBuild": null
    },
    {
      "_class": "hudson.model.FreeStyleProject",
      "name": "lint",
      "lastBuild": {"number": 7, "duration": 1500, "timestamp": 1700000100000},
      "lastFailedBuild": {"number": 6, "duration": 1200, "timestamp": 1700000050000}
    },
    {
      "_class": "org.jenkinsci.plugins.workflow.job.WorkflowJob",
      "name": "never-built",
      "lastBuild": null
    }
  ]
}`

// DescribeJSON is the stage breakdown of deploy #42.
const DescribeJSON = `{
  "id": "42",
  "name": "#42",
  "status": "SUCCESS",
  "stages": [
    {"id": "6", "name": "Build", "status": "SUCCESS", "durationMillis": 30000},
    {"id": "12", "name": "Test", "status": "SUCCESS", "durationMillis": 45500},
    {"id": "20", "name": "Deploy", "status": "SUCCESS", "durationMillis": 14500}
  ]
}`

// MetricsJSON is a trimmed metrics plugin document covering every section.
const MetricsJSON = `{
  "version": "4.0.0",
  "gauges": {
    "jenkins.executor.count.value": {"value": 4},
    "jenkins.health-check.inverse-score": {"value": 1.0},
    "jenkins.versions.core": {"value": "2.426.1"},
    "vm.deadlocks": {"value": []}
  },
  "counters": {},
  "meters": {
    "http.responseCodes.ok": {"count": 1204, "m1_rate": 0.2, "units": "events/minute"},
    "http.responseCodes.notFound": {"count": 12, "m1_rate": 0.0, "units": "events/minute"},
    "jenkins.job.scheduled": {"count": 310, "m1_rate": 0.1, "units": "events/minute"}
  },
  "timers": {
    "jenkins.job.building.duration": {
      "count": 20, "max": 12.5, "mean": 4.0, "min": 0.5,
      "p50": 3.5, "p75": 5.0, "p95": 9.0, "p98": 11.0, "p99": 12.0, "p999": 12.5,
      "stddev": 2.1, "m1_rate": 0.01, "duration_units": "seconds", "rate_units": "calls/minute"
    },
    "jenkins.node.agent-1.builds": {
      "count": 5, "max": 60.0, "mean": 30.0, "min": 10.0,
      "p50": 25.0, "p75": 40.0, "p95": 55.0, "p98": 58.0, "p99": 59.0, "p999": 60.0,
      "stddev": 9.0, "duration_units": "seconds", "rate_units": "calls/minute"
    }
  },
  "histograms": {
    "jenkins.executor.in-use.history": {
      "count": 3, "max": 2, "mean": 1.0, "min": 0,
      "p50": 1.0, "p75": 2.0, "p95": 2.0, "p98": 2.0, "p99": 2.0, "p999": 2.0,
      "stddev": 0.8, "values": [0, 1, 2]
    }
  }
}`

// Serve installs the fixtures on ms.
func (ms *MockServer) Serve() {
	ms.SetJSON(JobsPath, JobsJSON)
	ms.SetJSON(MetricsPath, MetricsJSON)
	ms.SetJSON(PingPath, "pong")
	ms.SetJSON(DescribePath("deploy", "42"), DescribeJSON)
}
