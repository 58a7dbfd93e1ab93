package apperr

// Hebrew user-facing messages.
const (
	msgUnauthenticated = "אינך מחובר"
	msgForbidden       = "אין לך הרשאה לבצע פעולה זו"
	msgTruckNotFound   = "העגלה לא נמצאה"
	msgReviewNotFound  = "הביקורת לא נמצאה"
	msgDuplicateReview = "כבר כתבת ביקורת על עגלה זו"
	msgUserNotFound    = "המשתמש לא נמצא"

	MsgOnlyOwnersCreateTrucks = "רק בעלי עגלות יכולים ליצור עגלה"

	MsgCreateReviewFailed = "שגיאה ביצירת הביקורת"
	MsgUpdateReviewFailed = "שגיאה בעדכון הביקורת"
	MsgDeleteReviewFailed = "שגיאה במחיקת הביקורת"
	MsgSaveTruckFailed    = "שגיאה בשמירת העגלה"
	MsgLoadTrucksFailed   = "שגיאה בטעינת העגלות"
	MsgInvalidRequest     = "בקשה לא תקינה"
	MsgUnavailable        = "השירות אינו זמין כרגע"
)
