// Package slack implements Slack's [Events API] over [HTTP webhooks]:
// it verifies [signed requests], answers URL verification challenges,
// and echoes [app_mention] messages back with the [chat.postMessage] method.
//
// [Events API]: https://docs.slack.dev/apis/events-api
// [HTTP webhooks]: https://docs.slack.dev/apis/events-api/using-http-request-urls
// [signed requests]: https://docs.slack.dev/authentication/verifying-requests-from-slack
// [app_mention]: https://docs.slack.dev/reference/events/app_mention
// [chat.postMessage]: https://docs.slack.dev/reference/methods/chat.postMessage
package slack
