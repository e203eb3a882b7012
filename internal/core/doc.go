// Package core provides the business logic of the meal-planning service.
//
// This package contains all domain logic independent of any transport or
// storage layer. Records come in through [RecordSource], e-mail goes out
// through [EmailSender], so everything here can be exercised without a
// database or network.
//
// # Collections
//
// A user owns three document collections, each described by a
// [CollectionDefinition] in the registry:
//
//   - mealPlans: ordered by createdAt descending, exported as meal-plans.csv
//   - ingredients: ordered by name ascending, exported as ingredients.csv
//   - feedback: ordered by createdAt descending, exported as feedback.csv
//
// Records are loose key/value documents ([Record]). Missing fields never
// fail a read: text defaults to "" and numbers to 0.
//
// # Export Pipeline
//
// [Service.ExportUserData] runs one export for one caller:
//
//  1. Check the caller has an identity and an e-mail address
//  2. Fetch the three collections concurrently
//  3. Map records to rows ([MealPlanRow], [IngredientRow], [FeedbackRow])
//     and encode them with [EncodeCSV]
//  4. Aggregate an [ExportSummary] with [Summarize]
//  5. Render the HTML report with [RenderReport]
//  6. Hand the message and three CSV attachments to the [EmailSender]
//
// Failures surface as [*ExportError] with one of three kinds:
// unauthenticated, invalid-argument or internal. Internal failures never
// carry provider or storage detail to the caller.
//
// # Error Handling
//
// Errors from record CRUD are mapped to user-friendly messages with
// support codes by [MapError]. See error_messages.go for the code table.
package core
